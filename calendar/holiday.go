package calendar

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// =============================================================================
// HOLIDAY ORACLE - Named-holiday lookup
// =============================================================================

// HolidayCalendar answers whether a date is a named holiday. The engine
// treats it as an opaque oracle; the backing data may change between
// process runs and reconciliation absorbs the difference.
type HolidayCalendar interface {
	// HolidayLabel returns the holiday name for the date, or "" if the
	// date is not a holiday.
	HolidayLabel(d Date) string
}

// NoHolidays is the no-op calendar for when holiday data is unavailable.
type NoHolidays struct{}

func (NoHolidays) HolidayLabel(Date) string { return "" }

// Table is a HolidayCalendar backed by a static date -> label map.
type Table struct {
	labels map[string]string
}

// NewTable builds a Table from ISO-date keys.
func NewTable(labels map[string]string) *Table {
	copied := make(map[string]string, len(labels))
	for iso, label := range labels {
		copied[iso] = label
	}
	return &Table{labels: copied}
}

func (t *Table) HolidayLabel(d Date) string { return t.labels[d.ISO()] }

// Len returns the number of holiday entries.
func (t *Table) Len() int { return len(t.labels) }

// LoadTable reads a holiday table from a text file.
//
// Format: one "YYYY-MM-DD label" entry per line, the date and label
// separated by any whitespace (spaces or a tab). Blank lines and lines
// starting with '#' are skipped. Malformed lines are logged and skipped;
// bad holiday data must never take the engine down.
func LoadTable(path string, logger *zap.Logger) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer file.Close()

	labels := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sep := strings.IndexFunc(line, unicode.IsSpace)
		if sep < 0 {
			logger.Warn("Invalid holiday line", zap.String("line", line))
			continue
		}
		iso, label := line[:sep], strings.TrimSpace(line[sep:])
		if label == "" {
			logger.Warn("Invalid holiday line", zap.String("line", line))
			continue
		}
		if _, err := Parse(iso); err != nil {
			logger.Warn("Invalid holiday date", zap.String("date", iso), zap.Error(err))
			continue
		}
		labels[iso] = label
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading holiday file: %w", err)
	}

	logger.Info("Holiday table loaded",
		zap.String("file", path),
		zap.Int("entries", len(labels)))
	return NewTable(labels), nil
}

// DefaultJapaneseHolidays returns a built-in table covering the Japanese
// national holidays for 2025-2026, including substitute holidays. Serves as
// a fallback when no holiday file is configured.
func DefaultJapaneseHolidays() *Table {
	return NewTable(map[string]string{
		"2025-01-01": "元日",
		"2025-01-13": "成人の日",
		"2025-02-11": "建国記念の日",
		"2025-02-23": "天皇誕生日",
		"2025-02-24": "振替休日",
		"2025-03-20": "春分の日",
		"2025-04-29": "昭和の日",
		"2025-05-03": "憲法記念日",
		"2025-05-04": "みどりの日",
		"2025-05-05": "こどもの日",
		"2025-05-06": "振替休日",
		"2025-07-21": "海の日",
		"2025-08-11": "山の日",
		"2025-09-15": "敬老の日",
		"2025-09-23": "秋分の日",
		"2025-10-13": "スポーツの日",
		"2025-11-03": "文化の日",
		"2025-11-23": "勤労感謝の日",
		"2025-11-24": "振替休日",
		"2026-01-01": "元日",
		"2026-01-12": "成人の日",
		"2026-02-11": "建国記念の日",
		"2026-02-23": "天皇誕生日",
		"2026-03-20": "春分の日",
		"2026-04-29": "昭和の日",
		"2026-05-03": "憲法記念日",
		"2026-05-04": "みどりの日",
		"2026-05-05": "こどもの日",
		"2026-05-06": "振替休日",
		"2026-07-20": "海の日",
		"2026-08-11": "山の日",
		"2026-09-21": "敬老の日",
		"2026-09-22": "国民の休日",
		"2026-09-23": "秋分の日",
		"2026-10-12": "スポーツの日",
		"2026-11-03": "文化の日",
		"2026-11-23": "勤労感謝の日",
	})
}
