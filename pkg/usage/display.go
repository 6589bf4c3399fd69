package usage

// Display 仪表盘卡片展示信息.
type Display struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Color string `json:"color"`
	Icon  string `json:"icon"` // svg path
}

var displays = map[Category]Display{
	CategoryDocument: {
		Title: "Documents",
		URL:   "/documents",
		Color: "#330000",
		Icon:  "M4 4a2 2 0 012-2h4.586A2 2 0 0112 2.586L15.414 6A2 2 0 0116 7.414V16a2 2 0 01-2 2H6a2 2 0 01-2-2V4zm2 6a1 1 0 011-1h6a1 1 0 110 2H7a1 1 0 01-1-1zm1 3a1 1 0 100 2h6a1 1 0 100-2H7z",
	},
	CategoryImage: {
		Title: "Images",
		URL:   "/images",
		Color: "#000033",
		Icon:  "M4 3a2 2 0 00-2 2v10a2 2 0 002 2h12a2 2 0 002-2V5a2 2 0 00-2-2H4zm12 12H4l4-8 3 6 2-4 3 6z",
	},
	CategoryMedia: {
		Title: "Media",
		URL:   "/media",
		Color: "brand",
		Icon:  "M2 6a2 2 0 012-2h6l2 2h6a2 2 0 012 2v2M2 6v10a2 2 0 002 2h12a2 2 0 002-2V8a2 2 0 00-2-2H4a2 2 0 00-2-2z M8 12l2 2 4-4",
	},
	CategoryOther: {
		Title: "Others",
		URL:   "/others",
		Color: "#4d4d00",
		Icon:  "M3 4a1 1 0 011-1h12a1 1 0 011 1v2a1 1 0 01-1 1H4a1 1 0 01-1-1V4zM3 10a1 1 0 011-1h6a1 1 0 011 1v6a1 1 0 01-1 1H4a1 1 0 01-1-1v-6zM14 9a1 1 0 00-1 1v6a1 1 0 001 1h2a1 1 0 001-1v-6a1 1 0 00-1-1h-2z",
	},
}

// Descriptor 返回分类的展示信息，未知分类返回 false，调用方应跳过该卡片.
func Descriptor(c Category) (Display, bool) {
	d, ok := displays[c]
	return d, ok
}

// Title 分类标题，未知分类返回原始值.
func (c Category) Title() string {
	if d, ok := displays[c]; ok {
		return d.Title
	}

	return string(c)
}
