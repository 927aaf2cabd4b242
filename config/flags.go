package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "config file path")
	flags.StringP("subdomain", "s", "", "HR document box subdomain (env HR_BOX_SUBDOMAIN)")
	flags.String("base-url", "", "service base URL, overrides --subdomain")
	flags.StringP("username", "u", "", "login username (env HR_BOX_USERNAME)")
	flags.StringP("password", "p", "", "login password (env HR_BOX_PASSWORD)")
	flags.StringP("output", "o", "", "output directory (env HR_BOX_OUTPUT, default \".\")")
	flags.String("extension", "", "file extension of saved documents (default \"pdf\")")
	flags.String("storage", "", "name of a configured storage to save into")
	flags.IntP("workers", "w", 0, "number of concurrent downloads (default 1)")
	flags.Int("timeout", 0, "per request timeout in seconds (default 60)")
	flags.String("proxy", "", "proxy URL (http, https, socks5)")
	flags.String("user-agent", "", "User-Agent header")
	flags.Bool("progress", false, "show a progress bar instead of per document logs")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file")

	bindFlags(cmd)
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	viper.BindPFlag("subdomain", flags.Lookup("subdomain"))
	viper.BindPFlag("base_url", flags.Lookup("base-url"))
	viper.BindPFlag("username", flags.Lookup("username"))
	viper.BindPFlag("password", flags.Lookup("password"))
	viper.BindPFlag("output", flags.Lookup("output"))
	viper.BindPFlag("extension", flags.Lookup("extension"))
	viper.BindPFlag("storage", flags.Lookup("storage"))
	viper.BindPFlag("workers", flags.Lookup("workers"))
	viper.BindPFlag("timeout", flags.Lookup("timeout"))
	viper.BindPFlag("proxy", flags.Lookup("proxy"))
	viper.BindPFlag("user_agent", flags.Lookup("user-agent"))
	viper.BindPFlag("progress", flags.Lookup("progress"))

	// log
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.file", flags.Lookup("log-file"))
}

func GetConfigFile(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	return configFile
}
