package config

const (
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// defaultCategories returns the compiled-in classification table. Order is
// significant: it is the declared category order used for display and it
// documents precedence even though construction forbids overlaps.
func defaultCategories() []CategoryRule {
	return []CategoryRule{
		{Name: "Audio", Extensions: []string{".mp3", ".wav", ".ogg", ".amr"}},
		{Name: "Docs", Extensions: []string{".doc", ".docx", ".txt", ".pdf", ".xlsx", ".pptx"}},
		{Name: "Images", Extensions: []string{".jpeg", ".png", ".jpg", ".svg"}},
		{Name: "Video", Extensions: []string{".avi", ".mp4", ".mov", ".mkv"}},
		{Name: "Archives", Extensions: []string{".zip", ".gz", ".tar", ".rar"}},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Categories: defaultCategories(),
	}
}
