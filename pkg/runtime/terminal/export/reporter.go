package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/api"
)

// Reporter renders remediation results to the console in a formatted text form.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(result api.Result) error {
	tmpl := `Status: {{.StatusCode}}
{{.Body}}
`
	t, err := template.New("result").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, result)
}

// Print writes a plain line to the reporter's output.
func (c *Reporter) Print(line string) error {
	_, err := fmt.Fprintln(c.writer, line)
	return err
}
