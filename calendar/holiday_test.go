package calendar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/bonus-engine/calendar"
)

func TestNoHolidays(t *testing.T) {
	assert.Empty(t, calendar.NoHolidays{}.HolidayLabel(calendar.MustParse("2025-01-01")))
}

func TestTable_Lookup(t *testing.T) {
	table := calendar.NewTable(map[string]string{"2025-01-01": "元日"})
	assert.Equal(t, "元日", table.HolidayLabel(calendar.MustParse("2025-01-01")))
	assert.Empty(t, table.HolidayLabel(calendar.MustParse("2025-01-02")))
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.txt")
	content := `# national holidays
2025-01-01 元日
2025-01-13 成人の日

not-a-date some label
2025-02-11
2025-02-23 天皇誕生日
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := calendar.LoadTable(path, zap.NewNop())
	require.NoError(t, err)

	// Comments, blanks and malformed lines are skipped
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "元日", table.HolidayLabel(calendar.MustParse("2025-01-01")))
	assert.Equal(t, "成人の日", table.HolidayLabel(calendar.MustParse("2025-01-13")))
	assert.Equal(t, "天皇誕生日", table.HolidayLabel(calendar.MustParse("2025-02-23")))
	assert.Empty(t, table.HolidayLabel(calendar.MustParse("2025-02-11")))
}

func TestLoadTable_TabSeparated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.txt")
	content := "2025-01-01\t元日\n2025-05-05\tこどもの日\n2025-02-11  建国記念の日\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := calendar.LoadTable(path, zap.NewNop())
	require.NoError(t, err)

	// Tabs and repeated spaces both separate the date from the label
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "元日", table.HolidayLabel(calendar.MustParse("2025-01-01")))
	assert.Equal(t, "こどもの日", table.HolidayLabel(calendar.MustParse("2025-05-05")))
	assert.Equal(t, "建国記念の日", table.HolidayLabel(calendar.MustParse("2025-02-11")))
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := calendar.LoadTable("/nonexistent/holidays.txt", zap.NewNop())
	assert.Error(t, err)
}

func TestDefaultJapaneseHolidays(t *testing.T) {
	table := calendar.DefaultJapaneseHolidays()
	assert.Equal(t, "元日", table.HolidayLabel(calendar.MustParse("2025-01-01")))
	assert.Equal(t, "こどもの日", table.HolidayLabel(calendar.MustParse("2025-05-05")))
	assert.Empty(t, table.HolidayLabel(calendar.MustParse("2025-09-01")))
}
