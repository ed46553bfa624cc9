package domain

import (
	"fmt"
	"strconv"
	"time"
)

// RecordType is the closed set of diary record kinds. Adding a type is a
// deliberate schema change; renderers switch over every variant explicitly.
type RecordType string

const (
	RecordGrowth RecordType = "growth"
	RecordSleep  RecordType = "sleep"
	RecordMeal   RecordType = "meal"
	RecordHealth RecordType = "health"
	RecordStool  RecordType = "stool"
	RecordMisc   RecordType = "misc"
)

type MealType string

const (
	MealBreastMilk MealType = "breast_milk"
	MealFormula    MealType = "formula"
	MealBabyFood   MealType = "baby_food"
)

type Symptom string

const (
	SymptomCough     Symptom = "cough"
	SymptomFever     Symptom = "fever"
	SymptomRunnyNose Symptom = "runny_nose"
	SymptomVomit     Symptom = "vomit"
	SymptomDiarrhea  Symptom = "diarrhea"
	SymptomOther     Symptom = "other"
)

type SleepQuality string

const (
	SleepGood   SleepQuality = "good"
	SleepNormal SleepQuality = "normal"
	SleepBad    SleepQuality = "bad"
)

type StoolAmount string

const (
	StoolLow    StoolAmount = "low"
	StoolMedium StoolAmount = "medium"
	StoolHigh   StoolAmount = "high"
)

type StoolCondition string

const (
	StoolNormal       StoolCondition = "normal"
	StoolDiarrhea     StoolCondition = "diarrhea"
	StoolConstipation StoolCondition = "constipation"
)

type StoolColor string

const (
	StoolYellow StoolColor = "yellow"
	StoolBrown  StoolColor = "brown"
	StoolGreen  StoolColor = "green"
	StoolOther  StoolColor = "other"
)

// Kid is the identity projection of a child profile.
type Kid struct {
	ID        int64
	Name      string
	BirthDate time.Time
	Gender    string // "male" or "female"
}

// Record is a diary entry with at most one type-specific detail attached.
// Exactly the detail matching Type is populated; the rest stay nil.
type Record struct {
	ID        int64
	KidID     int64
	Type      RecordType
	Title     string
	Memo      string
	CreatedAt time.Time

	Growth *GrowthDetail
	Health *HealthDetail
	Sleep  *SleepDetail
	Meal   *MealDetail
	Stool  *StoolDetail
}

type GrowthDetail struct {
	HeightCM float64
	WeightKG float64
}

type HealthDetail struct {
	Symptom     Symptom
	Temperature float64
}

type SleepDetail struct {
	Start   time.Time
	End     time.Time
	Quality SleepQuality
}

type MealDetail struct {
	Type   MealType
	Detail string
}

type StoolDetail struct {
	Amount    StoolAmount
	Condition StoolCondition
	Color     StoolColor
}

// Describe renders one record as a single diary line:
// "<created_at> [<type>] :: <detail>" with an optional memo suffix.
func (r Record) Describe() string {
	base := fmt.Sprintf("%s [%s]", r.CreatedAt.Format("2006-01-02 15:04"), r.Type)

	var detail string
	switch {
	case r.Type == RecordGrowth && r.Growth != nil:
		detail = fmt.Sprintf("height %scm, weight %skg",
			formatDecimal(r.Growth.HeightCM), formatDecimal(r.Growth.WeightKG))
	case r.Type == RecordHealth && r.Health != nil:
		detail = fmt.Sprintf("symptom %s, temp %s", r.Health.Symptom, formatDecimal(r.Health.Temperature))
	case r.Type == RecordSleep && r.Sleep != nil:
		detail = fmt.Sprintf("sleep %s -> %s (%s)",
			r.Sleep.Start.Format("2006-01-02 15:04"), r.Sleep.End.Format("2006-01-02 15:04"), r.Sleep.Quality)
	case r.Type == RecordMeal && r.Meal != nil:
		detail = fmt.Sprintf("meal %s: %s", r.Meal.Type, r.Meal.Detail)
	case r.Type == RecordStool && r.Stool != nil:
		detail = fmt.Sprintf("stool amount %s, condition %s, color %s",
			r.Stool.Amount, r.Stool.Condition, r.Stool.Color)
	default:
		if r.Memo != "" {
			detail = r.Memo
		} else {
			detail = r.Title
		}
	}

	line := base + " :: " + detail
	if r.Memo != "" && detail != r.Memo {
		line += " | memo: " + r.Memo
	}
	return line
}

// formatDecimal prints a measurement without a trailing ".0" for whole values.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CommunityCategory tags community posts.
type CommunityCategory string

const (
	CategoryGeneral     CommunityCategory = "general"
	CategoryMarketplace CommunityCategory = "marketplace"
	CategoryRecipe      CommunityCategory = "recipe"
)

// Post is a community post projection for recipe search.
type Post struct {
	ID         int64
	Title      string
	Content    string
	Category   CommunityCategory
	LikesCount int
	CreatedAt  time.Time
}
