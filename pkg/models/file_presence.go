package models

// FileColumns lists the columns that may carry sequence-file references, in
// resolution order. Only the ones actually present in a table are consulted.
var FileColumns = []string{"filename", "filename2", "filepath", "filepath2", "file1", "file2"}

// FilePresenceRecord is the outcome of resolving one file reference from a
// metadata cell. Ref is the raw cell value; Path the absolute or
// base-directory-joined form that was checked on disk.
type FilePresenceRecord struct {
	Row    int    `json:"row"`
	Key    string `json:"key,omitempty"`
	Column string `json:"column"`
	Ref    string `json:"ref"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}
