// Package socialcredit — ranks.go переводит числовой рейтинг в звание,
// уровень наказания и уровень привилегий.
//
// Лестница званий и пороги наказаний/привилегий — две независимые таблицы.
// Их границы различаются намеренно, объединять их нельзя.
package socialcredit

// Tier — ступень лестницы званий.
type Tier string

const (
	TierSupreme    Tier = "supreme"
	TierExemplary  Tier = "exemplary"
	TierGood       Tier = "good"
	TierAverage    Tier = "average"
	TierNeutral    Tier = "neutral"
	TierConcerning Tier = "concerning"
	TierPoor       Tier = "poor"
	TierEnemy      Tier = "enemy"
)

// Rank — отображаемые данные звания.
type Rank struct {
	Tier        Tier   `json:"tier" yaml:"tier"`
	Name        string `json:"name" yaml:"name"`
	Emoji       string `json:"emoji" yaml:"emoji"`
	Description string `json:"description" yaml:"description"`
	Color       int    `json:"color" yaml:"color"`
}

var (
	rankSupreme = Rank{
		Tier:        TierSupreme,
		Name:        "Верховный Гражданин 🇨🇳",
		Emoji:       "👑",
		Description: "Славный лидер народа! Си Цзиньпин гордился бы!",
		Color:       0xffd700,
	}
	rankExemplary = Rank{
		Tier:        TierExemplary,
		Name:        "Образцовый Гражданин",
		Emoji:       "⭐",
		Description: "Примерный член общества! Ваш социальный рейтинг приносит честь!",
		Color:       0x00ff00,
	}
	rankGood = Rank{
		Tier:        TierGood,
		Name:        "Хороший Гражданин",
		Emoji:       "✅",
		Description: "Достойный член общества. Продолжайте в том же духе, товарищ!",
		Color:       0x90ee90,
	}
	rankAverage = Rank{
		Tier:        TierAverage,
		Name:        "Средний Гражданин",
		Emoji:       "😐",
		Description: "Положительный, но скромный рейтинг. Есть куда расти, гражданин.",
		Color:       0xffff00,
	}
	rankNeutral = Rank{
		Tier:        TierNeutral,
		Name:        "Нейтральный Гражданин",
		Emoji:       "⚪",
		Description: "Нейтральный социальный рейтинг. Начните проявлять себя, товарищ!",
		Color:       0x808080,
	}
	rankConcerning = Rank{
		Tier:        TierConcerning,
		Name:        "Проблемный Гражданин",
		Emoji:       "⚠️",
		Description: "Ваше поведение вызывает беспокойство. Может потребоваться перевоспитание.",
		Color:       0xffa500,
	}
	rankPoor = Rank{
		Tier:        TierPoor,
		Name:        "Плохой Гражданин",
		Emoji:       "❌",
		Description: "Неприемлемое поведение! Явитесь в ближайший лагерь перевоспитания!",
		Color:       0xff4500,
	}
	rankEnemy = Rank{
		Tier:        TierEnemy,
		Name:        "Враг Государства",
		Emoji:       "💀",
		Description: "ВНИМАНИЕ: Данный индивид представляет угрозу социальной гармонии!",
		Color:       0xff0000,
	}
)

// Classify возвращает звание для рейтинга. Проверки идут сверху вниз,
// первая подходящая ступень побеждает.
func Classify(score int64) Rank {
	switch {
	case score >= 2000:
		return rankSupreme
	case score >= 1000:
		return rankExemplary
	case score >= 500:
		return rankGood
	case score > 0:
		return rankAverage
	case score == 0:
		return rankNeutral
	case score >= -200:
		return rankConcerning
	case score >= -500:
		return rankPoor
	default:
		return rankEnemy
	}
}

// PenaltyLevel — тяжесть наказания. Пустая строка — наказания нет.
type PenaltyLevel string

const (
	PenaltyNone     PenaltyLevel = ""
	PenaltyMild     PenaltyLevel = "MILD"
	PenaltyModerate PenaltyLevel = "MODERATE"
	PenaltySevere   PenaltyLevel = "SEVERE"
)

// PrivilegeLevel — уровень привилегий. Пустая строка — привилегий нет.
type PrivilegeLevel string

const (
	PrivilegeNone    PrivilegeLevel = ""
	PrivilegeGood    PrivilegeLevel = "GOOD_CITIZEN"
	PrivilegeModel   PrivilegeLevel = "MODEL_CITIZEN"
	PrivilegeSupreme PrivilegeLevel = "SUPREME_CITIZEN"
)

// PenaltyLevelFor возвращает уровень наказания для рейтинга.
func PenaltyLevelFor(score int64) PenaltyLevel {
	switch {
	case score <= -500:
		return PenaltySevere
	case score <= -200:
		return PenaltyModerate
	case score <= -50:
		return PenaltyMild
	default:
		return PenaltyNone
	}
}

// PrivilegeLevelFor возвращает уровень привилегий для рейтинга.
func PrivilegeLevelFor(score int64) PrivilegeLevel {
	switch {
	case score >= 1000:
		return PrivilegeSupreme
	case score >= 500:
		return PrivilegeModel
	case score >= 200:
		return PrivilegeGood
	default:
		return PrivilegeNone
	}
}

// Standing собирает всё, что вызывающему нужно для показа рейтинга.
type Standing struct {
	Score     int64          `json:"score" yaml:"score"`
	Rank      Rank           `json:"rank" yaml:"rank"`
	Penalty   PenaltyLevel   `json:"penalty,omitempty" yaml:"penalty,omitempty"`
	Privilege PrivilegeLevel `json:"privilege,omitempty" yaml:"privilege,omitempty"`
}

// StandingFor вычисляет звание и оба уровня для рейтинга.
func StandingFor(score int64) Standing {
	return Standing{
		Score:     score,
		Rank:      Classify(score),
		Penalty:   PenaltyLevelFor(score),
		Privilege: PrivilegeLevelFor(score),
	}
}
