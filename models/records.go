package models

// Envelope is the outer JSON object of one log file written by the workflow client.
type Envelope struct {
	FolderName    string       `json:"folder_name"`
	Timestamp     string       `json:"timestamp"`
	TotalMessages int          `json:"total_messages"`
	RawMessages   []RawMessage `json:"raw_messages"`
}

type RawMessage struct {
	MessageIndex int    `json:"message_index"`
	RawContent   string `json:"raw_content"`
	Timestamp    string `json:"timestamp"`
}

// RawRecord is one logged API response unit, owned by a submission.
type RawRecord struct {
	Submitter  string
	Timestamp  string
	Raw        string
	SourceFile string
	Index      int
}

// Item is one graded entry read from a parsed payload.
// Text is the raw value of the configured text field, before cleaning.
type Item struct {
	Text    string
	Flag    string
	Mistake string
	Comment string
	Input   string
	Thought string
}

// ParsedRecord pairs a raw record with the items recovered from it.
// Err is set when the payload could not be located or parsed.
type ParsedRecord struct {
	Record RawRecord
	Items  []Item
	Err    error
}

// CanonicalItem is a reference item established by the baseline submission.
type CanonicalItem struct {
	Key      string `json:"key" yaml:"key"`
	Index    int    `json:"index" yaml:"index"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// MistakeRecord is one item occurrence for one submitter against a canonical key.
type MistakeRecord struct {
	Submitter  string `json:"submitter"`
	Key        string `json:"key"`
	IsMistake  bool   `json:"is_mistake"`
	Mistake    string `json:"mistake,omitempty"`
	Comment    string `json:"comment,omitempty"`
	SourceFile string `json:"source_file"`
}

// ScanRecord is one flat item row produced by the scanner.
type ScanRecord struct {
	Submitter     string `json:"folder"`
	SourceFile    string `json:"file_path"`
	Timestamp     string `json:"timestamp"`
	RecordIndex   int    `json:"message_index"`
	SentenceIndex int    `json:"sentence_index"`
	Text          string `json:"chinese_text"`
	OriginalText  string `json:"original_text"`
	Flag          string `json:"mistake_flag"`
	IsMistake     bool   `json:"is_mistake"`
	IsCorrect     bool   `json:"is_correct"`
	Mistake       string `json:"mistake"`
	Comment       string `json:"comment,omitempty"`
	Input         string `json:"std_input,omitempty"`
	Thought       string `json:"thought,omitempty"`
}

// FileResult records the outcome of reading one log file.
type FileResult struct {
	Path      string `json:"path" yaml:"path"`
	Submitter string `json:"submitter" yaml:"submitter"`
	Status    string `json:"status" yaml:"status"` // "processed" or "skipped"
	Records   int    `json:"records" yaml:"records"`
	Items     int    `json:"items" yaml:"items"`
	ErrorType string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"

	ErrorTypeRead            = "read_error"
	ErrorTypeEnvelope        = "envelope_error"
	ErrorTypePayloadNotFound = "payload_not_found"
	ErrorTypeParse           = "parse_error"
	ErrorTypeShape           = "shape_error"
)

// RunSummary is reported at the end of every run, including partial failures.
type RunSummary struct {
	Submissions     int `json:"submissions" yaml:"submissions"`
	FilesProcessed  int `json:"files_processed" yaml:"files_processed"`
	FilesSkipped    int `json:"files_skipped" yaml:"files_skipped"`
	Records         int `json:"records" yaml:"records"`
	PayloadNotFound int `json:"payload_not_found" yaml:"payload_not_found"`
	ParseFailures   int `json:"parse_failures" yaml:"parse_failures"`
	Items           int `json:"items" yaml:"items"`
	UnmatchedItems  int `json:"unmatched_items" yaml:"unmatched_items"`
	// UnrecognizedFlags counts items whose flag is neither a mistake nor a
	// correct value. They never count as correct.
	UnrecognizedFlags int `json:"unrecognized_flags" yaml:"unrecognized_flags"`
}
