package repository

import "strings"

// LikeEscape is the escape character used with ContainsPattern; every SQL backend
// declares it explicitly with ESCAPE '!'.
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer(
	LikeEscape, LikeEscape+LikeEscape,
	"%", LikeEscape+"%",
	"_", LikeEscape+"_",
)

// ContainsPattern builds a LIKE pattern matching s anywhere, wildcards in s are literal.
func ContainsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}
