package excel

// ReaderConfig controls how spreadsheets are turned into tables
type ReaderConfig struct {
	Sheet   string `json:"sheet"`    // empty selects the first sheet
	MaxRows int    `json:"max_rows"` // 0 means no limit
}

// DefaultReaderConfig reads every row of the first sheet
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{}
}
