package drive

// Google Workspace MIME types the sync pipeline cares about.
const (
	MimeShortcut    = "application/vnd.google-apps.shortcut"
	MimeSpreadsheet = "application/vnd.google-apps.spreadsheet"
	MimeFolder      = "application/vnd.google-apps.folder"
)

// File is one entry returned by a folder listing. Files live only for the
// duration of a sync pass; nothing here is persisted.
type File struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	MimeType        string           `json:"mimeType"`
	ShortcutDetails *ShortcutDetails `json:"shortcutDetails,omitempty"`
}

// ShortcutDetails carries the target of a Drive shortcut. TargetMimeType may
// be empty, in which case the target's metadata must be fetched separately.
type ShortcutDetails struct {
	TargetID       string `json:"targetId"`
	TargetMimeType string `json:"targetMimeType,omitempty"`
}

// IsShortcut reports whether the file is a Drive shortcut needing resolution.
func (f File) IsShortcut() bool { return f.MimeType == MimeShortcut }

// IsSpreadsheet reports whether the file is a native Google Sheet, which
// cannot be downloaded directly and must be exported as CSV.
func (f File) IsSpreadsheet() bool { return f.MimeType == MimeSpreadsheet }

// listResponse is the Drive v3 files.list envelope.
type listResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Files         []File `json:"files"`
}
