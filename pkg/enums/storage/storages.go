package storage

import (
	"fmt"
	"strings"
)

// StorageType
type StorageType string

const (
	Local  StorageType = "local"
	Webdav StorageType = "webdav"
	Minio  StorageType = "minio"
)

var storageTypeNames = []StorageType{Local, Webdav, Minio}

func (t StorageType) String() string {
	return string(t)
}

// StorageTypeNames lists every supported storage type.
func StorageTypeNames() []string {
	names := make([]string, 0, len(storageTypeNames))
	for _, t := range storageTypeNames {
		names = append(names, string(t))
	}
	return names
}

// ParseStorageType matches name case-insensitively against the supported types.
func ParseStorageType(name string) (StorageType, error) {
	for _, t := range storageTypeNames {
		if strings.EqualFold(name, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%s is not a valid StorageType, try [%s]", name, strings.Join(StorageTypeNames(), ", "))
}
