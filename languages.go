package wordcache

import "strings"

// LanguageNames maps ISO 639-1 codes to English language names for provider prompts.
var LanguageNames = map[string]string{
	"ar": "Arabic",
	"bg": "Bulgarian",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// LanguageName returns the English name for a language code such as "de",
// "de-AT" or "de_AT". Unknown codes are returned unchanged.
func LanguageName(code string) string {
	if name, ok := LanguageNames[baseLang(code)]; ok {
		return name
	}
	return code
}

// baseLang extracts the lower-cased base language ("pt" from "pt_BR" or "pt-BR").
func baseLang(code string) string {
	code = strings.ReplaceAll(code, "-", "_")
	return strings.ToLower(strings.SplitN(code, "_", 2)[0])
}
