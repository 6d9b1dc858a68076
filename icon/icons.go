package icon

// Icon identifies a UI symbol rendered through the active variant.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Warn
	Play
	Pause
	Buffering
	Completed
	Frame
	Search
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "✖",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "…",
		kaomoji: "(・_・ヾ",
		squares: "🟦",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(￣ヘ￣)",
		squares: "🟨",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟩",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－)",
		squares: "🟧",
	},
	Buffering: {
		emoji:   "🔄",
		nerd:    "",
		plain:   "~",
		kaomoji: "(・・;)",
		squares: "🟪",
	},
	Completed: {
		emoji:   "🏁",
		nerd:    "",
		plain:   "#",
		kaomoji: "(＾▽＾)",
		squares: "⬛",
	},
	Frame: {
		emoji:   "🖼️",
		nerd:    "",
		plain:   "*",
		kaomoji: "(□_□)",
		squares: "⬜",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "?",
		kaomoji: "(⊙_⊙)",
		squares: "🟫",
	},
}
