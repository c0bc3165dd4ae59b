package tlrouter

import "strings"

// LanguageNames maps language codes to the labels used in prompts.
var LanguageNames = map[string]string{
	"auto": "the detected source language",

	"en":    "English",
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"ja":    "Japanese",
	"ko":    "Korean",
	"zh":    "Chinese (Simplified)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
	"es":    "Spanish",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"fr":    "French",
	"de":    "German",
	"it":    "Italian",
	"pt":    "Portuguese",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"ru":    "Russian",
	"ar":    "Arabic",
	"hi":    "Hindi",
	"th":    "Thai",
	"vi":    "Vietnamese",
	"id":    "Indonesian",
	"ms":    "Malay",
	"tr":    "Turkish",
	"nl":    "Dutch",
	"pl":    "Polish",
	"uk":    "Ukrainian",
	"sv":    "Swedish",
	"he":    "Hebrew",
	"el":    "Greek",
	"cs":    "Czech",
	"fi":    "Finnish",
	"da":    "Danish",
	"nb":    "Norwegian Bokmål",
	"hu":    "Hungarian",
	"ro":    "Romanian",
	"fa":    "Persian",
	"bn":    "Bengali",
	"tl":    "Tagalog",
}

// LanguageName returns the prompt label for a language code.
// Unknown codes are returned unchanged; this is never an error.
func LanguageName(code string) string {
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	if name, ok := LanguageNames[NormalizeLocale(code)]; ok {
		return name
	}
	return code
}

// NormalizeLocale converts a language code to the table format (e.g., "zh-tw" → "zh_TW").
func NormalizeLocale(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), "-", "_")
	base, region, found := strings.Cut(code, "_")
	if !found {
		return strings.ToLower(base)
	}
	return strings.ToLower(base) + "_" + strings.ToUpper(region)
}
