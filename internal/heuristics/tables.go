package heuristics

// Extension risk tables. An extension appears in at most one set.
var dangerousExtensions = map[string]struct{}{
	".exe": {}, ".bat": {}, ".cmd": {}, ".ps1": {}, ".vbs": {}, ".msi": {},
	".jar": {}, ".scr": {}, ".lnk": {}, ".hta": {}, ".pif": {}, ".com": {},
	".reg": {}, ".wsf": {}, ".cpl": {}, ".msc": {}, ".msp": {}, ".gadget": {},
	".application": {},
}

var scriptExtensions = map[string]struct{}{
	".js": {}, ".jse": {}, ".vbe": {}, ".wsh": {}, ".wsc": {}, ".sh": {},
	".bash": {}, ".zsh": {}, ".fish": {}, ".py": {}, ".rb": {}, ".pl": {},
	".php": {},
}

var documentExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".txt": {}, ".rtf": {}, ".odt": {}, ".csv": {},
}

var mediaExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {},
	".mp3": {}, ".mp4": {}, ".wav": {}, ".avi": {}, ".mov": {}, ".mkv": {},
}

var archiveExtensions = map[string]struct{}{
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {},
}

// Words scammers put in filenames to pressure people into opening them.
var suspiciousFilenameKeywords = []string{
	"invoice", "payment", "urgent", "update", "tracking",
	"details", "confirmation", "receipt", "refund", "verify",
	"account", "suspended", "click", "free", "prize", "winner",
	"bank", "password", "credential", "login",
}

// Words common in scam and phishing URLs.
var scamURLKeywords = []string{
	"free", "winner", "prize", "claim", "urgent", "verify",
	"suspended", "confirm", "unusual", "limited", "act-now",
	"click-here", "login-required", "update-required",
}

// Well-known domains treated as trustworthy. Matching produces an
// informational signal, never a risk escalation.
var trustedDomains = map[string]struct{}{
	"google.com": {}, "youtube.com": {}, "microsoft.com": {}, "apple.com": {},
	"amazon.com": {}, "bbc.com": {}, "bbc.co.uk": {}, "nhs.uk": {}, "gov.uk": {},
	"usa.gov": {}, "irs.gov": {}, "medicare.gov": {}, "wikipedia.org": {},
	"facebook.com": {}, "gmail.com": {}, "outlook.com": {}, "yahoo.com": {},
}

// URL shorteners hide the destination, so a shortened link always deserves a
// closer look.
var shortenerDomains = map[string]struct{}{
	"bit.ly": {}, "tinyurl.com": {}, "goo.gl": {}, "t.co": {}, "ow.ly": {},
	"is.gd": {}, "buff.ly": {}, "rebrand.ly": {}, "cutt.ly": {}, "rb.gy": {},
}

// Characters scammers substitute to make a domain look like a brand.
var homoglyphFold = map[rune]rune{
	'0': 'o', '1': 'l', '!': 'l', '|': 'l',
	'5': 's', '8': 'b', '@': 'a', '$': 's',
	'3': 'e',
}

// Brands commonly imitated by lookalike domains, mapped to the real domain.
var lookalikeTargets = map[string]string{
	"google":    "google.com",
	"youtube":   "youtube.com",
	"microsoft": "microsoft.com",
	"apple":     "apple.com",
	"amazon":    "amazon.com",
	"facebook":  "facebook.com",
	"instagram": "instagram.com",
	"paypal":    "paypal.com",
	"netflix":   "netflix.com",
	"ebay":      "ebay.com",
	"yahoo":     "yahoo.com",
	"outlook":   "outlook.com",
	"gmail":     "gmail.com",
	"wikipedia": "wikipedia.org",
}
