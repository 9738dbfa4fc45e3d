package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/commonground/cg/pkg/config"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
	FormatYAML  OutputFormat = "yaml"
)

var (
	mu  sync.Mutex
	out io.Writer = color.Output
)

// SetWriter redirects all output and returns a func restoring the previous writer
func SetWriter(w io.Writer) func() {
	mu.Lock()
	prev := out
	out = w
	mu.Unlock()

	return func() {
		mu.Lock()
		out = prev
		mu.Unlock()
	}
}

// Writer returns the current destination
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	switch OutputFormat(format) {
	case FormatJSON, FormatTable, FormatText, FormatYAML:
		return true
	}
	return false
}

// Structured reports whether output is meant for machines rather than people
func Structured() bool {
	f := GetOutputFormat()
	return f == FormatJSON || f == FormatYAML
}

// Print outputs data in the configured format with optional title.
// Text and table fall back to indented JSON.
func Print(title string, data interface{}) error {
	w := Writer()

	switch GetOutputFormat() {
	case FormatJSON:
		return writeJSON(w, data)
	case FormatYAML:
		return writeYAML(w, data)
	default:
		if title != "" {
			fmt.Fprintf(w, "%s:\n", title)
		}
		return writeJSON(w, data)
	}
}

// PrintTable prints rows under bold headers, aligned in columns
func PrintTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(Writer(), 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	bold.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	w.Flush()
}

// PrintRecord outputs a single record with its keys sorted
func PrintRecord(title string, record map[string]interface{}) error {
	switch GetOutputFormat() {
	case FormatJSON, FormatYAML:
		return Print(title, record)
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if GetOutputFormat() == FormatTable {
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, fmt.Sprintf("%v", record[k])})
		}
		PrintTable([]string{"Field", "Value"}, rows)
		return nil
	}

	w := Writer()
	if title != "" {
		fmt.Fprintf(w, "%s:\n", title)
	}
	bold := color.New(color.Bold)
	for _, k := range keys {
		bold.Fprint(w, k+": ")
		fmt.Fprintf(w, "%v\n", record[k])
	}
	return nil
}

// Println writes a plain line
func Println(a ...interface{}) {
	fmt.Fprintln(Writer(), a...)
}

// Printf writes formatted text
func Printf(format string, args ...interface{}) {
	fmt.Fprintf(Writer(), format, args...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Writer(), msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Writer(), msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Writer(), "Warning: "+msg+"\n", args...)
}

func writeJSON(w io.Writer, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// writeYAML goes through JSON first so field names follow the json tags
func writeYAML(w io.Writer, data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(b, &generic); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
