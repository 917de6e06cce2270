package types

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestSummaryOptionsMergeAndDefaults(t *testing.T) {
	opts := &SummaryOptions{InputDir: "/in", ReportName: "Flag Name", PeakWindow: 3}
	opts.MergeConfig(&Config{
		OutputDir:  "/cfg-out",
		ReportName: "Config Name",
		ReportType: []string{"csv"},
		PeakWindow: intPtr(6),
		SplitHour:  intPtr(11),
		Zip:        true,
	})
	opts.ApplyDefaults()

	if opts.ReportName != "Flag Name" || opts.PeakWindow != 3 {
		t.Errorf("flags should win over config: %+v", opts)
	}
	if opts.OutputDir != "/cfg-out" || opts.SplitHour != 11 || !opts.Zip || len(opts.ReportType) != 1 {
		t.Errorf("config should fill unset options: %+v", opts)
	}

	bare := &SummaryOptions{InputDir: "/in"}
	bare.MergeConfig(nil)
	bare.ApplyDefaults()
	if bare.OutputDir != "/in" || bare.ReportName != DefaultReportName {
		t.Errorf("unexpected defaults: %+v", bare)
	}
	if bare.PeakWindow != DefaultPeakWindow || bare.SplitHour != DefaultSplitHour {
		t.Errorf("unexpected defaults: %+v", bare)
	}
}

func TestErrorKinds(t *testing.T) {
	dfe := &DataFormatError{File: "1_a.xlsx", Sheet: "Light Vehicles", Row: 5, Column: "Northbound / Left Turns", Reason: "blank count"}
	if !errors.Is(dfe, ErrDataFormat) {
		t.Error("DataFormatError should match ErrDataFormat")
	}
	for _, part := range []string{"1_a.xlsx", "[Light Vehicles]", "row 5", "Northbound / Left Turns", "blank count"} {
		if !strings.Contains(dfe.Error(), part) {
			t.Errorf("%q missing from %q", part, dfe.Error())
		}
	}

	ioErr := &IOError{Op: "write", Path: "/out/x.xlsx", Err: os.ErrPermission}
	if !errors.Is(ioErr, ErrIO) || !errors.Is(ioErr, os.ErrPermission) {
		t.Error("IOError should match ErrIO and its cause")
	}

	if !errors.Is(NotFoundError("/in", os.ErrNotExist), ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if !errors.Is(NotFoundError("/in", os.ErrNotExist), os.ErrNotExist) {
		t.Error("NotFoundError should keep its cause")
	}
	if !errors.Is(EmptyInputError("1_a.xlsx"), ErrEmptyInput) {
		t.Error("EmptyInputError should match ErrEmptyInput")
	}

	cfgErr := &ConfigError{Path: "tmc.toml", Field: "split_hour", Reason: "must be an hour between 1 and 23, got 24"}
	if !errors.Is(cfgErr, ErrConfig) {
		t.Error("ConfigError should match ErrConfig")
	}
	if !strings.Contains(cfgErr.Error(), `field "split_hour"`) {
		t.Errorf("field missing from %q", cfgErr.Error())
	}
	if wrapped := (&ConfigError{Path: "tmc.toml", Err: os.ErrNotExist}); !errors.Is(wrapped, os.ErrNotExist) {
		t.Error("ConfigError should keep its cause")
	}
}
