package web

import (
	"github.com/hako/durafmt"

	"github.com/johnwmail/flashclip/internal/models"
)

// Labels holds the user-visible strings of one language
type Labels struct {
	// index page
	AppTitle     string
	Language     string
	Content      string
	Placeholder  string
	ReadOnce     string
	TTL          string
	TTLHelp      string
	Create       string
	Preview      string
	PreviewEmpty string
	ClipCreated  string
	CopyLink     string
	CreateFailed string
	ErrorPrefix  string

	// view page
	ViewTitle      string
	CreatedAt      string
	ReadOnceLabel  string
	Lifetime       string
	Remaining      string
	Size           string
	Expired        string
	Yes            string
	No             string
	Back           string
	CopyContent    string
	ReadOnceNotice string

	// shared
	Copy       string
	CopyCode   string
	Copied     string
	CopyFailed string
	Hours      string
	Minutes    string
	Seconds    string

	units durafmt.Units
}

var englishUnits = durafmt.Units{
	Year:        durafmt.Unit{Singular: "year", Plural: "years"},
	Week:        durafmt.Unit{Singular: "week", Plural: "weeks"},
	Day:         durafmt.Unit{Singular: "day", Plural: "days"},
	Hour:        durafmt.Unit{Singular: "hour", Plural: "hours"},
	Minute:      durafmt.Unit{Singular: "minute", Plural: "minutes"},
	Second:      durafmt.Unit{Singular: "second", Plural: "seconds"},
	Millisecond: durafmt.Unit{Singular: "millisecond", Plural: "milliseconds"},
	Microsecond: durafmt.Unit{Singular: "microsecond", Plural: "microseconds"},
}

var chineseUnits = durafmt.Units{
	Year:        durafmt.Unit{Singular: "年", Plural: "年"},
	Week:        durafmt.Unit{Singular: "周", Plural: "周"},
	Day:         durafmt.Unit{Singular: "天", Plural: "天"},
	Hour:        durafmt.Unit{Singular: "小时", Plural: "小时"},
	Minute:      durafmt.Unit{Singular: "分钟", Plural: "分钟"},
	Second:      durafmt.Unit{Singular: "秒", Plural: "秒"},
	Millisecond: durafmt.Unit{Singular: "毫秒", Plural: "毫秒"},
	Microsecond: durafmt.Unit{Singular: "微秒", Plural: "微秒"},
}

var labels = map[string]Labels{
	models.LangEN: {
		AppTitle:     "Online Clipboard",
		Language:     "Language:",
		Content:      "Content (Markdown supported):",
		Placeholder:  "Enter your clipboard content here... Markdown syntax is supported!",
		ReadOnce:     "Read once (delete after viewing)",
		TTL:          "TTL (seconds, default: 600):",
		TTLHelp:      "Time To Live: The clipboard will be automatically deleted after this many seconds (minimum 60 seconds).",
		Create:       "Create Clipboard",
		Preview:      "Markdown Preview:",
		PreviewEmpty: "Preview will appear here...",
		ClipCreated:  "Clipboard created!",
		CopyLink:     "Click here to copy the link",
		CreateFailed: "Failed to create clipboard",
		ErrorPrefix:  "Error: ",

		ViewTitle:      "Online Clipboard Content",
		CreatedAt:      "Created at: ",
		ReadOnceLabel:  "Read once: ",
		Lifetime:       "Lifetime: ",
		Remaining:      "Time remaining: ",
		Size:           "Size: ",
		Expired:        "Expired",
		Yes:            "Yes",
		No:             "No",
		Back:           "← Create new clipboard",
		CopyContent:    "Copy content",
		ReadOnceNotice: "This clipboard has been deleted from the server. Copy what you need before leaving this page.",

		Copy:       "Copy",
		CopyCode:   "Copy code",
		Copied:     "Copied!",
		CopyFailed: "Failed to copy",
		Hours:      "h ",
		Minutes:    "m ",
		Seconds:    "s",

		units: englishUnits,
	},
	models.LangZH: {
		AppTitle:     "在线剪贴板",
		Language:     "语言:",
		Content:      "内容（支持 Markdown）:",
		Placeholder:  "在此输入剪贴板内容... 支持 Markdown 语法！",
		ReadOnce:     "仅读一次（查看后删除）",
		TTL:          "TTL（秒，默认：600）:",
		TTLHelp:      "生存时间：剪贴板将在此秒数后自动删除（最少 60 秒）。",
		Create:       "创建剪贴板",
		Preview:      "Markdown 预览:",
		PreviewEmpty: "预览将在此显示...",
		ClipCreated:  "剪贴板已创建！",
		CopyLink:     "点击此处复制链接",
		CreateFailed: "创建剪贴板失败",
		ErrorPrefix:  "错误：",

		ViewTitle:      "剪贴板内容",
		CreatedAt:      "创建时间：",
		ReadOnceLabel:  "仅读一次：",
		Lifetime:       "有效期：",
		Remaining:      "剩余时间：",
		Size:           "大小：",
		Expired:        "已过期",
		Yes:            "是",
		No:             "否",
		Back:           "← 创建新剪贴板",
		CopyContent:    "复制内容",
		ReadOnceNotice: "此剪贴板已从服务器删除。离开本页前请复制所需内容。",

		Copy:       "复制",
		CopyCode:   "复制代码",
		Copied:     "已复制！",
		CopyFailed: "复制失败",
		Hours:      "小时 ",
		Minutes:    "分钟 ",
		Seconds:    "秒",

		units: chineseUnits,
	},
}

// LabelsFor returns the labels for lang, falling back to English
func LabelsFor(lang string) Labels {
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[models.LangEN]
}
