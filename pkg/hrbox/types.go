package hrbox

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is one entry of the document listing.
type Document struct {
	Folder            string `json:"ATT_FOLDER" yaml:"folder"`
	Domain            string `json:"ATT_DOMAIN" yaml:"domain"`
	Bookmark          string `json:"ATT_BOOKMARK" yaml:"bookmark"`
	Name              string `json:"ATT_NAME" yaml:"name"`
	FileIndex         string `json:"FILE_INDEX" yaml:"file_index"`
	FolderDescription string `json:"ATT_FOLDER_DESCRIPTION" yaml:"folder_description"`
	Date              string `json:"ATT_DOC_DATE" yaml:"date"`
	Note              string `json:"ATT_NOTIZ" yaml:"note"`
}

type Folder struct {
	ID                  string   `json:"id" yaml:"id"`
	Path                string   `json:"path" yaml:"path"`
	Description         string   `json:"description" yaml:"description"`
	CustomFolder        bool     `json:"customFolder" yaml:"custom_folder"`
	DocumentCount       uint32   `json:"documentCount" yaml:"document_count"`
	UnreadDocumentCount uint32   `json:"unreadDocumentCount" yaml:"unread_document_count"`
	Folders             []Folder `json:"folders" yaml:"folders,omitempty"`
}

// Metadata describes one column of the listing as rendered by the web UI.
type Metadata struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Type        int32  `json:"type" yaml:"type"`
	Visible     bool   `json:"visible" yaml:"visible"`
	Editable    bool   `json:"editable" yaml:"editable"`
	Length      uint32 `json:"length" yaml:"length"`
}

// Page is a single response of the paged document listing.
// TotalResultCount is the number of documents in this page,
// TotalCount the number of documents across all pages.
type Page struct {
	Success          bool       `json:"success"`
	TotalResultCount uint32     `json:"totalResultCount"`
	TotalCount       uint32     `json:"totalCount"`
	UnreadCount      uint32     `json:"unreadCount"`
	Offset           uint32     `json:"offset"`
	MetaData         []Metadata `json:"metaData"`
	Documents        []Document `json:"documents"`
	Folders          []Folder   `json:"folders,omitempty"`
}

type Credentials struct {
	Username string
	Password string
}
