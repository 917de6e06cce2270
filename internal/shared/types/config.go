package types

// Config represents the application configuration that can be loaded from a file.
// PeakWindow and SplitHour are nil when the file leaves them out.
type Config struct {
	OutputDir  string   `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	ReportName string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	PeakWindow *int     `json:"peak_window" yaml:"peak_window" toml:"peak_window"`
	SplitHour  *int     `json:"split_hour" yaml:"split_hour" toml:"split_hour"`
	PublishDB  string   `json:"publish_db" yaml:"publish_db" toml:"publish_db"`
	S3URI      string   `json:"s3_uri" yaml:"s3_uri" toml:"s3_uri"`
	Profile    string   `json:"profile" yaml:"profile" toml:"profile"`
	Zip        bool     `json:"zip" yaml:"zip" toml:"zip"`
	ListenAddr string   `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`
}
