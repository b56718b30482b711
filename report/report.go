package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/TFMV/fakeset/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// -----------------------------
// Report Generator Interfaces
// -----------------------------

// ReportGenerator defines the methods for generating run reports.
type ReportGenerator interface {
	GenerateRunReport(run metrics.RunReport) ([]byte, error)
	SaveReportToFile(run metrics.RunReport, filePath string) error
}

// -----------------------------
// JSON Report Generator
// -----------------------------

// JSONReportGenerator generates JSON reports.
type JSONReportGenerator struct{}

// GenerateRunReport serializes the RunReport to JSON.
func (j *JSONReportGenerator) GenerateRunReport(run metrics.RunReport) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}

// SaveReportToFile saves the JSON report to a file.
func (j *JSONReportGenerator) SaveReportToFile(run metrics.RunReport, filePath string) error {
	data, err := j.GenerateRunReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}

// -----------------------------
// HTML Report Generator
// -----------------------------

// HTMLReportGenerator generates HTML reports.
type HTMLReportGenerator struct{}

var funcs = template.FuncMap{
	"percent": func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
}

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Fakeset Run Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f4f4f4; }
        .warn { color: #b36b00; }
    </style>
</head>
<body>
    <h1>Fakeset Run Report</h1>
    <p><strong>Run:</strong> {{.Run.RunID}}</p>
    <p><strong>Schema:</strong> {{.Run.Schema}}</p>
    <p><strong>Workers:</strong> {{.Run.Workers}}</p>
    <p><strong>Duplicate Fraction:</strong> {{percent .Run.DuplicateFraction}}</p>
    <p><strong>Seed:</strong> {{.Run.Seed}}</p>
    <p><strong>Started:</strong> {{.Run.StartTime}}</p>
    {{if .Run.OutputPath}}<p><strong>Output:</strong> {{.Run.OutputPath}} ({{.Run.OutputFormat}})</p>{{end}}

    <h2>Plan</h2>
    <table>
        <tr>
            <th>Requested</th>
            <th>Chunk Size</th>
            <th>Chunks</th>
            <th>Rows</th>
            <th>Truncated</th>
        </tr>
        <tr>
            <td>{{.Plan.TotalRecords}}</td>
            <td>{{.Plan.ChunkSize}}</td>
            <td>{{.Plan.NumChunks}}</td>
            <td>{{.Plan.Rows}}</td>
            <td {{if .Plan.Truncated}}class="warn"{{end}}>{{.Plan.Truncated}}</td>
        </tr>
    </table>

    <h2>Chunks</h2>
    <table>
        <tr>
            <th>Chunk</th>
            <th>Size</th>
            <th>Unique</th>
            <th>Duplicates</th>
            <th>Duration</th>
        </tr>
        {{range .Chunks}}
        <tr>
            <td>{{.ChunkID}}</td>
            <td>{{.Size}}</td>
            <td>{{.UniqueRows}}</td>
            <td>{{.DuplicateRows}}</td>
            <td>{{.Duration}}</td>
        </tr>
        {{end}}
    </table>
    <p><strong>Unique Rows:</strong> {{.UniqueRows}}</p>
    <p><strong>Duplicate Rows:</strong> {{.DuplicateRows}}</p>

    <h2>Dataset</h2>
    <p><strong>Rows:</strong> {{.Dataset.Rows}}</p>
    <p><strong>Exact Duplicates:</strong> {{.Dataset.ExactDuplicates}}</p>
    <table>
        <tr>
            <th>Column</th>
            <th>Type</th>
            <th>Missing</th>
            <th>Missing Ratio</th>
        </tr>
        {{range .Dataset.Columns}}
        <tr>
            <td>{{.Name}}</td>
            <td>{{.Type}}</td>
            <td>{{.Missing}}</td>
            <td>{{percent .MissingRatio}}</td>
        </tr>
        {{end}}
    </table>

    <footer>
        <p>Finished {{.Run.EndTime}} in {{.Run.Duration}}</p>
    </footer>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(funcs).Parse(htmlTemplate))

// GenerateRunReport renders the run as an HTML page.
func (h *HTMLReportGenerator) GenerateRunReport(run metrics.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveReportToFile saves the HTML report to a file.
func (h *HTMLReportGenerator) SaveReportToFile(run metrics.RunReport, filePath string) error {
	data, err := h.GenerateRunReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}

// GeneratorFor picks a generator from the file extension: .html and .htm
// produce HTML, anything else JSON.
func GeneratorFor(filePath string) ReportGenerator {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".html", ".htm":
		return &HTMLReportGenerator{}
	default:
		return &JSONReportGenerator{}
	}
}

// SaveReport writes run to filePath in the format implied by its extension.
func SaveReport(run metrics.RunReport, filePath string) error {
	return GeneratorFor(filePath).SaveReportToFile(run, filePath)
}

// SaveReports saves both JSON and HTML reports.
func SaveReports(run metrics.RunReport, jsonPath, htmlPath string) error {
	jsonGen := JSONReportGenerator{}
	htmlGen := HTMLReportGenerator{}

	if err := jsonGen.SaveReportToFile(run, jsonPath); err != nil {
		return err
	}
	return htmlGen.SaveReportToFile(run, htmlPath)
}

// ReportFromFilePath loads a JSON report written by SaveReport.
func ReportFromFilePath(filePath string) (metrics.RunReport, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return metrics.RunReport{}, err
	}
	var report metrics.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return metrics.RunReport{}, err
	}
	return report, nil
}
