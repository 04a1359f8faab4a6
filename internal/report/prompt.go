package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pipeline"
)

// ErrNoInput is returned when the input closes before a valid answer.
var ErrNoInput = errors.New("no input")

// Prompter asks the operator for run parameters on a line-oriented terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Date asks for a target date until a valid YYYY-MM-DD or "today" is entered.
func (p *Prompter) Date(now time.Time) (models.Date, error) {
	for {
		line, err := p.readLine("Enter date (YYYY-MM-DD) or 'today': ")
		if err != nil {
			return models.Date{}, err
		}
		date, err := models.ParseTargetDate(line, now)
		if err == nil {
			return date, nil
		}
		fmt.Fprintln(p.out, "Invalid date format. Please use YYYY-MM-DD")
	}
}

// Count asks for the number of results until a positive integer or an empty
// line (the default) is entered.
func (p *Prompter) Count(def int) (int, error) {
	for {
		line, err := p.readLine(fmt.Sprintf("Number of top active stocks to display (default %d): ", def))
		if err != nil {
			return 0, err
		}
		if line == "" {
			return def, nil
		}
		n, err := strconv.Atoi(line)
		switch {
		case err != nil:
			fmt.Fprintln(p.out, "Please enter a valid number.")
		case n <= 0:
			fmt.Fprintln(p.out, "Please enter a positive number.")
		default:
			return n, nil
		}
	}
}

// Confirm returns a confirmation hook that shows the plan and asks y/n.
func (p *Prompter) Confirm() pipeline.ConfirmFunc {
	return func(ctx context.Context, plan pipeline.Plan) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(p.out, "\nThis will fetch data for %s stocks.\n", humanize.Comma(int64(plan.Instruments)))
		fmt.Fprintf(p.out, "With API rate limits, this will take approximately %s.\n", FormatEstimate(plan.Estimated))

		line, err := p.readLine("Continue with full analysis? (y/n): ")
		if err != nil {
			return false, err
		}
		return strings.ToLower(line) == "y", nil
	}
}

// FormatEstimate renders a duration in hours above one hour, minutes otherwise.
func FormatEstimate(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%.1f hours", d.Hours())
	}
	return fmt.Sprintf("%.1f minutes", d.Minutes())
}
