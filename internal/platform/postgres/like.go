// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import "strings"

// LikeEscape is the ESCAPE character paired with [ContainsPattern].
const LikeEscape = `\`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a search term into a substring ILIKE pattern.
//
// The wildcards % and _ in the term match themselves. Use it with
// "ILIKE $n ESCAPE '\'".
func ContainsPattern(term string) string {
	return "%" + likeReplacer.Replace(term) + "%"
}
