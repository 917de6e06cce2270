package types

const (
	DefaultReportName = "TMC Summary"
	DefaultPeakWindow = 4
	DefaultSplitHour  = 12
)

// SummaryOptions carries everything a summarize call needs.
type SummaryOptions struct {
	InputDir   string
	OutputDir  string
	ConfigFile string
	ReportName string
	ReportType []string
	PeakWindow int
	SplitHour  int
	PublishDB  string
	S3URI      string
	Profile    string
	Zip        bool
}

// ApplyDefaults fills unset options. An empty output directory means the input directory.
func (o *SummaryOptions) ApplyDefaults() {
	if o.OutputDir == "" {
		o.OutputDir = o.InputDir
	}
	if o.ReportName == "" {
		o.ReportName = DefaultReportName
	}
	if o.PeakWindow <= 0 {
		o.PeakWindow = DefaultPeakWindow
	}
	if o.SplitHour <= 0 || o.SplitHour > 23 {
		o.SplitHour = DefaultSplitHour
	}
}

// MergeConfig copies config file values into options the caller left unset.
func (o *SummaryOptions) MergeConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.OutputDir == "" {
		o.OutputDir = cfg.OutputDir
	}
	if o.ReportName == "" {
		o.ReportName = cfg.ReportName
	}
	if len(o.ReportType) == 0 {
		o.ReportType = cfg.ReportType
	}
	if o.PeakWindow == 0 && cfg.PeakWindow != nil {
		o.PeakWindow = *cfg.PeakWindow
	}
	if o.SplitHour == 0 && cfg.SplitHour != nil {
		o.SplitHour = *cfg.SplitHour
	}
	if o.PublishDB == "" {
		o.PublishDB = cfg.PublishDB
	}
	if o.S3URI == "" {
		o.S3URI = cfg.S3URI
	}
	if o.Profile == "" {
		o.Profile = cfg.Profile
	}
	if !o.Zip {
		o.Zip = cfg.Zip
	}
}

// SummaryResult lists the files a summarize call produced.
type SummaryResult struct {
	Workbook  string
	Exports   []string
	Archive   string
	Uploaded  []string
	Published int
	Runs      int
}
