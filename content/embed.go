package content

import "embed"

// ScenariosFS holds the dialogue-practice scenario catalog. Each file is a
// markdown briefing with frontmatter metadata (title, category, difficulty,
// tags, learning objectives).
//
//go:embed scenarios/*.md
var ScenariosFS embed.FS
