package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
)

// MealAPI is the meal part of the remote API. *client.APIClient
// implements it.
type MealAPI interface {
	ListMeals(ctx context.Context, accessToken string, page int) (*models.MealsPage, error)
	GetMeal(ctx context.Context, accessToken, id string) (*models.Meal, error)
	DeleteMeal(ctx context.Context, accessToken, id string) error
	UploadMealImage(ctx context.Context, accessToken, filename string, r io.Reader) (*models.MealAnalysis, error)
}

// Caller runs a request with a valid access token. *SessionManager
// implements it.
type Caller interface {
	Call(ctx context.Context, fn func(ctx context.Context, accessToken string) error) error
}

// MealService exposes the meal endpoints with token refresh handled.
type MealService struct {
	api     MealAPI
	session Caller
}

func NewMealService(api MealAPI, session Caller) *MealService {
	return &MealService{api: api, session: session}
}

func (m *MealService) ListMeals(ctx context.Context, page int) (*models.MealsPage, error) {
	var out *models.MealsPage
	err := m.session.Call(ctx, func(ctx context.Context, token string) error {
		p, err := m.api.ListMeals(ctx, token, page)
		out = p
		return err
	})
	return out, err
}

func (m *MealService) GetMeal(ctx context.Context, id string) (*models.Meal, error) {
	var out *models.Meal
	err := m.session.Call(ctx, func(ctx context.Context, token string) error {
		meal, err := m.api.GetMeal(ctx, token, id)
		out = meal
		return err
	})
	return out, err
}

func (m *MealService) DeleteMeal(ctx context.Context, id string) error {
	return m.session.Call(ctx, func(ctx context.Context, token string) error {
		return m.api.DeleteMeal(ctx, token, id)
	})
}

// UploadMealImage sends the photo for analysis. r is read once up front so
// the upload can be repeated after a refresh.
func (m *MealService) UploadMealImage(ctx context.Context, filename string, r io.Reader) (*models.MealAnalysis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	var out *models.MealAnalysis
	err = m.session.Call(ctx, func(ctx context.Context, token string) error {
		a, err := m.api.UploadMealImage(ctx, token, filename, bytes.NewReader(data))
		out = a
		return err
	})
	return out, err
}
