package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
)

var errUsage = errors.New("wrong arguments, type 'help'")

// ListMeals prints one page of meals. The page number is optional.
func (a *App) ListMeals(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("%w: page must be a positive number", errUsage)
		}
		page = n
	}

	p, err := a.meals.ListMeals(ctx, page)
	if err != nil {
		return err
	}

	if len(p.Meals) == 0 {
		fmt.Fprintln(a.out, "No meals.")
		return nil
	}
	for _, m := range p.Meals {
		fmt.Fprintf(a.out, "%s  %-30s %8.0f kcal\n", m.ID, m.Name, m.TotalCalories)
	}
	fmt.Fprintf(a.out, "page %d, %d meals total\n", p.Page, p.TotalCount)
	if p.HasNext() {
		fmt.Fprintf(a.out, "next: meals %d\n", p.Page+1)
	}
	return nil
}

func (a *App) ShowMeal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage meal <id>", errUsage)
	}

	m, err := a.meals.GetMeal(ctx, args[0])
	if err != nil {
		return err
	}
	a.printMeal(m)
	return nil
}

func (a *App) printMeal(m *models.Meal) {
	fmt.Fprintf(a.out, "%s (%s)\n", m.Name, m.ID)
	for _, in := range m.Ingredients {
		fmt.Fprintf(a.out, "  %-28s %7.0f g %8.0f kcal\n", in.Name, in.Weight, in.Calories)
	}
	fmt.Fprintf(a.out, "  %-28s %7.0f g %8.0f kcal\n", "total", m.TotalWeight, m.TotalCalories)
}

func (a *App) DeleteMeal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage delete <id>", errUsage)
	}
	if err := a.meals.DeleteMeal(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// UploadMeal sends a photo for analysis and prints the recognised ingredients.
func (a *App) UploadMeal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage upload <path>", errUsage)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.meals.UploadMealImage(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}

	for _, in := range res.Ingredients {
		fmt.Fprintf(a.out, "  %-28s %8.0f kcal\n", in.Name, in.Calories)
	}
	fmt.Fprintf(a.out, "  %-28s %8.0f kcal\n", "total", res.Calories)
	return nil
}
