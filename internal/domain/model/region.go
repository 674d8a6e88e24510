package model

// regions — фиксированный список территорий Ферганской области, из которого
// пользователь выбирает свой регион при регистрации. Порядок важен:
// inline-кнопки ссылаются на регион по индексу.
var regions = []string{
	"Бошқарма",
	"Қувасой шахар",
	"Фарғона шахар",
	"Қўқон шахар",
	"Марғилон шахар",
	"Бешариқ туман",
	"Боғдод туман",
	"Бувайда туман",
	"Данғара туман",
	"Ёзёвон туман",
	"Қува туман",
	"Олтиариқ туман",
	"Қўштепа туман",
	"Риштон туман",
	"Тошлоқ туман",
	"Ўзбекистон туман",
	"Учкўприк туман",
	"Фарғона туман",
	"Фурқат туман",
	"Сўх туман",
}

// Regions возвращает копию списка регионов.
func Regions() []string {
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}

// RegionByIndex возвращает регион по индексу inline-кнопки.
func RegionByIndex(i int) (string, bool) {
	if i < 0 || i >= len(regions) {
		return "", false
	}
	return regions[i], true
}

// ValidRegion сообщает, входит ли название в фиксированный список.
func ValidRegion(name string) bool {
	for _, r := range regions {
		if r == name {
			return true
		}
	}
	return false
}
