package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Her metod alıcıyı değiştirmeden yeni bir builder döndürmelidir.
func TestImmutableQuery_NeverMutatesReceiver(t *testing.T) {
	conn := New(nil)
	base := conn.BuildImmutable().
		Select("id").
		From("users", "u").
		InnerJoin("teams", "t", "t.id = u.team_id").
		Where("u.active = 1").
		Having("COUNT(*) > 1").
		GroupBy("u.id").
		OrderBy("u.id").
		Limit(10).
		Offset(5)
	before := snapshot(base)

	mutations := map[string]func(q *ImmutableQuery) *ImmutableQuery{
		"Select":     func(q *ImmutableQuery) *ImmutableQuery { return q.Select("name") },
		"SelectAs":   func(q *ImmutableQuery) *ImmutableQuery { return q.SelectAs("n", "COUNT(*)") },
		"SelectMap":  func(q *ImmutableQuery) *ImmutableQuery { return q.SelectMap(Projections{P("x")}) },
		"Insert":     func(q *ImmutableQuery) *ImmutableQuery { return q.Insert("logs") },
		"Update":     func(q *ImmutableQuery) *ImmutableQuery { return q.Update("logs") },
		"Upsert":     func(q *ImmutableQuery) *ImmutableQuery { return q.Upsert("logs") },
		"Delete":     func(q *ImmutableQuery) *ImmutableQuery { return q.Delete("logs") },
		"Table":      func(q *ImmutableQuery) *ImmutableQuery { return q.Table("groups", "g") },
		"FromTables": func(q *ImmutableQuery) *ImmutableQuery { return q.FromTables(TableRefs{{Table: "a"}}) },
		"FromSub":    func(q *ImmutableQuery) *ImmutableQuery { return q.FromSub(conn.Raw("SELECT 1"), "s") },
		"Join":       func(q *ImmutableQuery) *ImmutableQuery { return q.LeftJoin("roles", "r", "r.id = u.role_id") },
		"JoinSub":    func(q *ImmutableQuery) *ImmutableQuery { return q.JoinSub(conn.Raw("SELECT 1"), "s", "1", "") },
		"Values":     func(q *ImmutableQuery) *ImmutableQuery { return q.Values(Fields{F("a", Int(1))}) },
		"Set":        func(q *ImmutableQuery) *ImmutableQuery { return q.Set(Fields{F("a", Int(1))}) },
		"Where":      func(q *ImmutableQuery) *ImmutableQuery { return q.Where("u.id = ?", Int(1)) },
		"WhereMap":   func(q *ImmutableQuery) *ImmutableQuery { return q.WhereMap(Criteria{C("id", Int(1))}) },
		"GroupBy":    func(q *ImmutableQuery) *ImmutableQuery { return q.GroupBy("t.id") },
		"Having":     func(q *ImmutableQuery) *ImmutableQuery { return q.Having("SUM(x) > 0") },
		"HavingMap":  func(q *ImmutableQuery) *ImmutableQuery { return q.HavingMap(Criteria{C("SUM(x)", Int(0))}) },
		"OrderBy":    func(q *ImmutableQuery) *ImmutableQuery { return q.OrderBy("u.name") },
		"Limit":      func(q *ImmutableQuery) *ImmutableQuery { return q.Limit(1) },
		"Offset":     func(q *ImmutableQuery) *ImmutableQuery { return q.Offset(1) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			changed := mutate(base)
			assert.NotSame(t, base, changed)
			assert.NotEqual(t, before, snapshot(changed))
			assert.Equal(t, before, snapshot(base))
		})
	}
}

func TestImmutableQuery_Branching(t *testing.T) {
	conn := New(nil)
	active := conn.BuildImmutable().Select().From("users").Where("active = 1")

	admins := active.WhereMap(Criteria{C("role", Str("admin"))})
	guests := active.WhereMap(Criteria{C("role", Str("guest"))})

	assert.Equal(t, "active = 1", active.WhereClause())
	assert.Equal(t, "active = 1\nAND `role`='admin'", admins.WhereClause())
	assert.Equal(t, "active = 1\nAND `role`='guest'", guests.WhereClause())
}

// Values'a verilen List, dışarıdan değiştirilse bile builder'ı etkilemez.
func TestImmutableQuery_ValuesAreCopied(t *testing.T) {
	ids := Ints(1, 2)
	fields := Fields{F("ids", ids)}

	q := New(nil).BuildImmutable().Insert("t").Values(fields)
	ids[0] = Int(99)
	fields[0].Column = "changed"

	sql, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `t`\n(`ids`)\nVALUES ('1','2')", sql)
}

func TestImmutableQuery_Mutable(t *testing.T) {
	immutable := New(nil).BuildImmutable().Select().From("users")
	mutable := immutable.Mutable()

	mutable.Where("id = 1")
	assert.Equal(t, "id = 1", mutable.WhereClause())
	assert.Empty(t, immutable.WhereClause())
	assert.Equal(t, immutable.FromClause(), mutable.FromClause())
}

func snapshot(q *ImmutableQuery) []string {
	return []string{
		q.Kind().String(),
		q.SelectClause(),
		q.FromClause(),
		q.ColumnsClause(),
		q.ValuesClause(),
		q.SetClause(),
		q.WhereClause(),
		q.GroupByClause(),
		q.HavingClause(),
		q.OrderByClause(),
		q.LimitClause(),
	}
}
