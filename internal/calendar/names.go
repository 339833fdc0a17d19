package calendar

// Month and weekday display names. Labels are data consumed by the entry
// grid and the exported report, not calendar logic.

var monthNamesAmharic = [13]string{
	"መስከረም", "ጥቅምት", "ኅዳር", "ታኅሣሥ",
	"ጥር", "የካቲት", "መጋቢት", "ሚያዝያ",
	"ግንቦት", "ሰኔ", "ሐምሌ", "ነሐሴ", "ጳጉሜ",
}

var monthNamesEnglish = [13]string{
	"Meskerem", "Tikimt", "Hidar", "Tahsas",
	"Tir", "Yekatit", "Megabit", "Miyazya",
	"Ginbot", "Sene", "Hamle", "Nehase", "Pagume",
}

var weekdayNamesAmharic = [7]string{"ሰኞ", "ማክሰኞ", "ረቡዕ", "ሐሙስ", "ዓርብ", "ቅዳሜ", "እሁድ"}

var weekdayNamesEnglish = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MonthName returns the Amharic and English names of an Ethiopian month.
func MonthName(month int) (amharic, english string) {
	if month < 1 || month > 13 {
		return "", ""
	}
	return monthNamesAmharic[month-1], monthNamesEnglish[month-1]
}

// Amharic returns the Amharic weekday name.
func (w Weekday) Amharic() string {
	if w < Monday || w > Sunday {
		return ""
	}
	return weekdayNamesAmharic[w]
}

// String returns the English weekday name.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return ""
	}
	return weekdayNamesEnglish[w]
}
