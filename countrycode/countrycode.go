// Package countrycode maps a DOS keyboard layout id to the DOS country
// number (the same numbering COUNTRY.SYS and MS-DOS's SELECT/country
// codepage tables use, which follows the ITU international telephone
// calling code for each country). It is a standalone lookup: nothing in
// the keyb package calls it, and it never needs a keyb.Session to be
// useful -- a host can feed it keyb.Session.QueryName()'s result, or a
// layout id typed at a prompt, independent of whether any layout is
// currently loaded.
package countrycode

import "strings"

// Codes maps a layout id (case preserved as in DOS keyboard library
// files) to its DOS country number.
var Codes = map[string]int{
	"ar462": 785, "ar470": 785,
	"az": 994,
	"ba": 387,
	"be": 32, "bx": 32,
	"bg": 359, "bg103": 359, "bg241": 359,
	"bl": 375, "by": 375,
	"br": 55, "br274": 55,
	"ca": 2, "cf": 2, "cf445": 2,
	"ce": 7, "ce443": 7, "ru": 7, "ru443": 7, "rx": 7, "rx443": 7, "tt": 7, "tt443": 7,
	"cg": 382,
	"co": 1,
	"cz": 42, "cz243": 42, "cz489": 42, "sk": 42,
	"de": 49, "gr": 49, "gr453": 49,
	"dk": 45,
	"dv": 1, "lh": 1, "rh": 1, "us": 1, "ux": 1,
	"ee": 372, "et": 372,
	"el": 30, "gk": 30, "gk220": 30, "gk459": 30,
	"es": 34, "sp": 34, "sx": 34,
	"fi": 358, "su": 358,
	"fo": 298,
	"fr": 33, "fx": 33,
	"hr": 385,
	"hu": 36, "hu208": 36,
	"hy": 374,
	"il": 972,
	"is": 354, "is161": 354,
	"it": 39, "it142": 39, "ix": 39,
	"jp": 81,
	"ka": 995,
	"kk": 7, "kk476": 7,
	"kx": 44, "uk": 44, "uk168": 44,
	"ky": 996,
	"la": 3,
	"lt": 370, "lt210": 370, "lt211": 370, "lt221": 370, "lt456": 370,
	"lv": 371, "lv455": 371,
	"ml": 356, "mt": 356, "mt103": 356,
	"mk": 389,
	"mn": 976, "mo": 976,
	"ne": 227,
	"ng": 234,
	"nl": 31,
	"no": 47,
	"ph": 63,
	"pl": 48, "pl214": 48,
	"po": 351, "px": 351,
	"ro": 40, "ro446": 40,
	"sd": 41, "sf": 41, "sg": 41,
	"si": 386,
	"sq": 355, "sq448": 355,
	"sr": 381, "yc": 381, "yc450": 381,
	"sv": 46,
	"tj": 992,
	"tm": 993,
	"tr": 90, "tr440": 90,
	"ua": 380, "ur": 380, "ur465": 380, "ur1996": 380, "ur2001": 380, "ur2007": 380,
	"uz": 998,
	"vi": 84,
	"yu": 38,
	"bn": 229,
}

// Lookup returns the DOS country number for layoutID and true, or
// (0, false) if the id isn't in the table. Lookup is case-insensitive,
// matching the case-insensitive comparisons used throughout keyboard
// library lookups.
func Lookup(layoutID string) (int, bool) {
	if code, ok := Codes[layoutID]; ok {
		return code, true
	}
	lower := strings.ToLower(layoutID)
	for id, code := range Codes {
		if strings.ToLower(id) == lower {
			return code, true
		}
	}
	return 0, false
}
