package sqlstore

const (
	sqlTableLinks = "links"
	sqlAliasLinks = "l"

	sqlColID            = "id"
	sqlColCode          = "code"
	sqlColTargetURL     = "target_url"
	sqlColClicks        = "clicks"
	sqlColLastClickedAt = "last_clicked_at"
	sqlColCreatedAt     = "created_at"

	likeEscape = `\`
)

func qualify(alias, col string) string {
	return alias + "." + col
}

// Order matches Scan in scanLink.
var sqlLinksSelectCols = []string{
	qualify(sqlAliasLinks, sqlColID),
	qualify(sqlAliasLinks, sqlColCode),
	qualify(sqlAliasLinks, sqlColTargetURL),
	qualify(sqlAliasLinks, sqlColClicks),
	qualify(sqlAliasLinks, sqlColLastClickedAt),
	qualify(sqlAliasLinks, sqlColCreatedAt),
}

var sqlLinksOrderBy = []string{
	qualify(sqlAliasLinks, sqlColCreatedAt) + " DESC",
	qualify(sqlAliasLinks, sqlColID) + " DESC",
}
