package models

// Ingredient is one line of a stored meal.
type Ingredient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Calories float64 `json:"calories"`
}

// Meal is a single logged meal with its ingredient breakdown.
type Meal struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Ingredients   []Ingredient `json:"ingredients"`
	TotalWeight   float64      `json:"totalWeight"`
	TotalCalories float64      `json:"totalCalories"`
	CreatedAt     string       `json:"createdAt,omitempty"`
	UpdatedAt     string       `json:"updatedAt,omitempty"`
}

// MealsPage is one page of GET /meals.
type MealsPage struct {
	Meals      []Meal `json:"meals"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalCount int64  `json:"totalCount"`
}

// HasNext reports whether another page follows this one.
func (p *MealsPage) HasNext() bool {
	if p == nil || p.PageSize <= 0 {
		return false
	}
	return int64(p.Page)*int64(p.PageSize) < p.TotalCount
}

// AnalysedIngredient is an ingredient recognised in an uploaded photo.
type AnalysedIngredient struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

// MealAnalysis is the response of POST /meal/image.
type MealAnalysis struct {
	Ingredients []AnalysedIngredient `json:"ingredients"`
	Calories    float64              `json:"calories"`
}
