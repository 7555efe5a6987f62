package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loans = "person_age,person_gender,person_education,person_income,person_emp_exp," +
	"person_home_ownership,loan_amnt,loan_intent,loan_int_rate,loan_percent_income," +
	"cb_person_cred_hist_length,credit_score,previous_loan_defaults_on_file,loan_status\n" +
	"22,female,Master,71948.0,0,RENT,35000.0,PERSONAL,16.02,0.49,3,561,0,1\n" +
	"21,female,High School,12282.0,0,OWN,1000.0,EDUCATION,11.14,0.08,2,504,1,0\n" +
	"25,female,High School,12438.0,3,MORTGAGE,5500.0,MEDICAL,12.87,0.44,3,635,0,1\n" +
	"23,female,Bachelor,79753.0,0,RENT,35000.0,MEDICAL,15.23,0.44,2,675,0,1\n" +
	"24,male,Master,66135.0,1,RENT,35000.0,MEDICAL,14.27,0.53,4,586,0,1\n" +
	"not,enough,columns\n"

func writeLoans(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loan_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(loans), 0o600))
	return path
}

func TestRun_PrintsDistributionAndWritesPlot(t *testing.T) {
	input := writeLoans(t)
	output := filepath.Join(t.TempDir(), "degree_distribution.png")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-input", input, "-output", output, "-workers", "2"}, &stdout)
	require.NoError(t, err)

	// 0-4 (Master), 1-2 (High School), 2-3, 2-4, 3-4 (MEDICAL)
	want := "Using 5 loan records\n" +
		"Degree distribution:\n" +
		"Degree 1: 2 nodes\n" +
		"Degree 2: 1 nodes\n" +
		"Degree 3: 2 nodes\n"
	assert.Equal(t, want, stdout.String())

	file, err := os.Open(output)
	require.NoError(t, err)
	defer file.Close()
	cfg, err := png.DecodeConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
}

func TestRun_SVGOutput(t *testing.T) {
	input := writeLoans(t)
	output := filepath.Join(t.TempDir(), "plot.svg")

	require.NoError(t, run(context.Background(), []string{"-input", input, "-output", output}, &bytes.Buffer{}))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing input", args: []string{"-input", filepath.Join(t.TempDir(), "missing.csv"), "-output", filepath.Join(t.TempDir(), "out.png")}},
		{name: "unknown flag", args: []string{"-bogus"}},
		{name: "positional argument", args: []string{"extra"}},
		{name: "missing config file", args: []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			assert.Error(t, run(context.Background(), tt.args, &stdout))
		})
	}
}

func TestRun_NoPlot(t *testing.T) {
	input := writeLoans(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "degree_distribution.png")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-input", input, "-output", output, "-no-plot"}, &stdout))

	assert.Contains(t, stdout.String(), "Using 5 loan records\n")
	assert.Contains(t, stdout.String(), "Degree 3: 2 nodes\n")
	assert.NoFileExists(t, output)
}

func TestRun_MaxRecords(t *testing.T) {
	input := writeLoans(t)
	output := filepath.Join(t.TempDir(), "degree_distribution.png")

	err := run(context.Background(), []string{"-input", input, "-output", output, "-max-records", "4"}, &bytes.Buffer{})

	assert.ErrorContains(t, err, "5 records")
	assert.NoFileExists(t, output)
}

func TestRun_FailedWriteLeavesNoPartialFile(t *testing.T) {
	input := writeLoans(t)
	dir := t.TempDir()
	// a directory in place of the plot makes the final rename fail
	output := filepath.Join(dir, "degree_distribution.png")
	require.NoError(t, os.Mkdir(output, 0o755))

	err := run(context.Background(), []string{"-input", input, "-output", output}, &bytes.Buffer{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "degree_distribution.png", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}

func TestRun_FailedRunKeepsPreviousPlot(t *testing.T) {
	output := filepath.Join(t.TempDir(), "degree_distribution.png")
	require.NoError(t, os.WriteFile(output, []byte("previous"), 0o600))

	err := run(context.Background(), []string{"-input", filepath.Join(t.TempDir(), "missing.csv"), "-output", output}, &bytes.Buffer{})
	require.Error(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.svg")
	require.NoError(t, os.WriteFile(path, []byte("old plot"), 0o600))

	require.NoError(t, writeFile(path, []byte("<svg/>")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}
