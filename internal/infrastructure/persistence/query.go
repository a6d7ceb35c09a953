package persistence

import (
	"fmt"
	"strings"
)

// where собирает условия с позиционными параметрами Postgres.
type where struct {
	conds []string
	args  []interface{}
}

// add добавляет условие; все "?" в нём ссылаются на один и тот же аргумент.
func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), -1))
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page дописывает LIMIT/OFFSET и возвращает полный список аргументов.
func (w *where) page(limit, offset int) (string, []interface{}) {
	n := len(w.args)
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern - шаблон ILIKE для поиска подстроки; % и _ из ввода ищутся буквально.
// Используется вместе с ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
