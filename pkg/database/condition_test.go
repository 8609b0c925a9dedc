package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetween(t *testing.T) {
	esc := MySQLEscaper{}
	may1 := time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC)
	may31 := time.Date(2018, 5, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		min, max Value
		want     string
	}{
		{Int(0), Int(5), " BETWEEN '0' AND '5'"},
		{At(may1), At(may31), " BETWEEN '2018-05-01 00:00:00' AND '2018-05-31 23:59:59'"},
	}
	for _, tt := range tests {
		between, err := Between(tt.min, tt.max)
		require.NoError(t, err)
		got, err := between.Condition(esc)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestBetween_RejectsOtherTypes(t *testing.T) {
	for _, pair := range [][2]Value{
		{Str(""), Str("")},
		{Int(1), Str("5")},
		{NullValue, Int(1)},
		{Bool(true), Bool(false)},
		{Ints(1), Ints(2)},
	} {
		_, err := Between(pair[0], pair[1])
		assert.ErrorIs(t, err, ErrTypeMismatch)

		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "between", mismatch.Condition)
	}
}

func TestNotEquals(t *testing.T) {
	esc := MySQLEscaper{}
	oct1 := time.Date(2019, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		value Value
		want  string
	}{
		{Bool(true), " != '1'"},
		{Bool(false), " != '0'"},
		{Int(1), " != '1'"},
		{Str("1"), " != '1'"},
		{NullValue, " IS NOT NULL"},
		{nil, " IS NOT NULL"},
		{At(oct1), " != '2019-10-01 00:00:00'"},
	}
	for _, tt := range tests {
		ne, err := NotEquals(tt.value)
		require.NoError(t, err)
		got, err := ne.Condition(esc)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNotEquals_RejectsList(t *testing.T) {
	_, err := NotEquals(List{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestIn(t *testing.T) {
	conn := New(nil)
	esc := MySQLEscaper{}

	tests := []struct {
		name string
		data any
		in   string
		out  string
	}{
		{"raw string", "1, 2, 3", " IN (1, 2, 3)", " NOT IN (1, 2, 3)"},
		{"list", List{NullValue, Int(1), Int(2)}, " IN (NULL,'1','2')", " NOT IN (NULL,'1','2')"},
		{"value slice", []Value{Str("a"), Str("b")}, " IN ('a','b')", " NOT IN ('a','b')"},
		{"sub query", conn.Select("id").From("users"), " IN (SELECT id\nFROM `users`)", " NOT IN (SELECT id\nFROM `users`)"},
		{"raw query", conn.Raw("SELECT 1"), " IN (SELECT 1)", " NOT IN (SELECT 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := In(tt.data)
			require.NoError(t, err)
			got, err := in.Condition(esc)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)

			notIn, err := NotIn(tt.data)
			require.NoError(t, err)
			got, err = notIn.Condition(esc)
			require.NoError(t, err)
			assert.Equal(t, tt.out, got)
		})
	}
}

// Alt sorgu tipinden bağımsız olarak SELECT yolu ile render edilir.
func TestIn_SubQueryRendersSelect(t *testing.T) {
	sub := New(nil).Build().Select("user_id").From("bans").Delete("bans")
	in, err := In(sub)
	require.NoError(t, err)

	got, err := in.Condition(MySQLEscaper{})
	require.NoError(t, err)
	assert.Equal(t, " IN (SELECT user_id\nFROM `bans`)", got)
}

func TestIn_RejectsOtherTypes(t *testing.T) {
	for _, data := range []any{1, Int(1), nil, []int{1, 2}} {
		_, err := In(data)
		assert.ErrorIs(t, err, ErrTypeMismatch, "%T", data)

		_, err = NotIn(data)
		assert.ErrorIs(t, err, ErrTypeMismatch, "%T", data)
	}
}

func TestConditionsInCriteria(t *testing.T) {
	conn := New(nil)
	between, _ := Between(Int(18), Int(65))
	active, _ := NotEquals(NullValue)
	roles, _ := NotIn(Strs("banned", "guest"))

	fragments, err := conn.CompileConditions(Criteria{
		C("age", between),
		C("verified_at", active),
		C("role", roles),
		C("deleted_at", nil),
		C("team_id", Ints(1, 2)),
		C("u.name", Str("john")),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"`age` BETWEEN '18' AND '65'",
		"`verified_at` IS NOT NULL",
		"`role` NOT IN ('banned','guest')",
		"`deleted_at` IS NULL",
		"`team_id` IN ('1','2')",
		"`u`.`name`='john'",
	}, fragments)
}
