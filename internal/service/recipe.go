package service

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/client"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/repo"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RecipeService — рецепты: CRUD с проверкой владения, публичный
// доступ по токену, импорт через распознавание и экспорт.
type RecipeService struct {
	recipes  repo.RecipeRepository
	settings *SettingsService

	extractor    client.Extractor
	nutrition    client.NutritionAnalyzer
	consolidator client.Consolidator
	submitter    client.Submitter
}

func NewRecipeService(
	recipes repo.RecipeRepository,
	settings *SettingsService,
	extractor client.Extractor,
	nutrition client.NutritionAnalyzer,
	consolidator client.Consolidator,
	submitter client.Submitter,
) *RecipeService {
	return &RecipeService{
		recipes:      recipes,
		settings:     settings,
		extractor:    extractor,
		nutrition:    nutrition,
		consolidator: consolidator,
		submitter:    submitter,
	}
}

// getOwned возвращает рецепт, только если он принадлежит
// пользователю; admin обходит проверку. Чужой рецепт неотличим
// от несуществующего.
func (s *RecipeService) getOwned(ctx context.Context, ac auth.Context, id string) (*model.Recipe, error) {
	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || (!ac.IsAdmin() && rec.UserID != ac.UserID) {
		return nil, ErrNotFound
	}
	return rec, nil
}

// List: администратор видит всё, остальные — только своё.
func (s *RecipeService) List(ctx context.Context, ac auth.Context) ([]model.Recipe, error) {
	if ac.IsAdmin() {
		return s.recipes.ListAll(ctx)
	}
	return s.recipes.ListByUser(ctx, ac.UserID)
}

func (s *RecipeService) Get(ctx context.Context, ac auth.Context, id string) (*model.Recipe, error) {
	return s.getOwned(ctx, ac, id)
}

// RecipeInput — данные рецепта из распознавания или ручной правки.
type RecipeInput struct {
	Name         string
	Description  string
	Ingredients  []string
	Instructions []string
	Tags         []string
	Servings     *int
	CollectionID *string
	Image        []byte
	ImageMime    string
}

func (s *RecipeService) Create(ctx context.Context, ac auth.Context, in RecipeInput) (*model.Recipe, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("recipe name is required")
	}
	rec := &model.Recipe{
		ID:           uuid.NewString(),
		UserID:       ac.UserID,
		Name:         in.Name,
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		Tags:         in.Tags,
		Servings:     in.Servings,
		CollectionID: in.CollectionID,
		Image:        in.Image,
		ImageMime:    in.ImageMime,
	}
	if rec.Ingredients == nil {
		rec.Ingredients = []string{}
	}
	if rec.Instructions == nil {
		rec.Instructions = []string{}
	}
	if err := s.recipes.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecipeService) Update(ctx context.Context, ac auth.Context, id string, in RecipeInput) (*model.Recipe, error) {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		rec.Name = in.Name
	}
	rec.Description = in.Description
	if in.Ingredients != nil {
		rec.Ingredients = in.Ingredients
	}
	if in.Instructions != nil {
		rec.Instructions = in.Instructions
	}
	rec.Tags = in.Tags
	rec.Servings = in.Servings
	rec.CollectionID = in.CollectionID
	if in.Image != nil {
		rec.Image = in.Image
		rec.ImageMime = in.ImageMime
	}
	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecipeService) Delete(ctx context.Context, ac auth.Context, id string) error {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return err
	}
	return s.recipes.Delete(ctx, rec.ID)
}

// Share выдаёт (или возвращает уже выданный) токен публичного доступа.
func (s *RecipeService) Share(ctx context.Context, ac auth.Context, id string) (string, error) {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return "", err
	}
	if rec.PublicToken != nil {
		return *rec.PublicToken, nil
	}
	token := uuid.NewString()
	if err := s.recipes.SetPublicToken(ctx, rec.ID, &token); err != nil {
		return "", err
	}
	return token, nil
}

// Unshare отзывает токен публичного доступа.
func (s *RecipeService) Unshare(ctx context.Context, ac auth.Context, id string) error {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return err
	}
	return s.recipes.SetPublicToken(ctx, rec.ID, nil)
}

// GetPublic — неаутентифицированное чтение по токену.
func (s *RecipeService) GetPublic(ctx context.Context, token string) (*model.Recipe, error) {
	rec, err := s.recipes.GetByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Import распознаёт страницы внешним сервисом и сохраняет рецепт.
// Первая страница становится основным изображением. Ошибка
// распознавания доводится до вызывающего как есть.
func (s *RecipeService) Import(ctx context.Context, ac auth.Context, pages []client.Page) (*model.Recipe, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("at least one page is required")
	}
	ex, err := s.extractor.Extract(ctx, pages)
	if err != nil {
		return nil, err
	}
	in := RecipeInput{
		Name:         ex.Name,
		Description:  ex.Description,
		Ingredients:  ex.Ingredients,
		Instructions: ex.Instructions,
		Tags:         ex.Tags,
		Servings:     ex.Servings,
		Image:        pages[0].Data,
		ImageMime:    pages[0].Mime,
	}
	rec, err := s.Create(ctx, ac, in)
	if err != nil {
		return nil, err
	}

	// исходные страницы сохраняются целиком, по позициям
	images := make([]model.RecipeImage, 0, len(pages))
	for i, p := range pages {
		images = append(images, model.RecipeImage{
			ID:       uuid.NewString(),
			RecipeID: rec.ID,
			Position: i,
			Data:     p.Data,
			Mime:     p.Mime,
		})
	}
	if err := s.recipes.ReplaceImages(ctx, rec.ID, images); err != nil {
		return nil, err
	}
	return rec, nil
}

// Pages — метаданные исходных страниц скана.
func (s *RecipeService) Pages(ctx context.Context, ac auth.Context, id string) ([]model.RecipeImage, error) {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	return s.recipes.ListImages(ctx, rec.ID)
}

// PageData — содержимое одной страницы скана.
func (s *RecipeService) PageData(ctx context.Context, ac auth.Context, id string, position int) (*model.RecipeImage, error) {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	img, err := s.recipes.GetImage(ctx, rec.ID, position)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrNotFound
	}
	return img, nil
}

// Analyze запрашивает оценку питательности и сохраняет её в рецепте.
func (s *RecipeService) Analyze(ctx context.Context, ac auth.Context, id string) (*client.Nutrition, error) {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	n, err := s.nutrition.Analyze(ctx, rec.Name, rec.Ingredients, rec.Instructions)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	rec.NutritionInfo = string(b)
	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, err
	}
	return n, nil
}

// ShoppingList сводит ингредиенты выбранных рецептов в один список
// покупок через внешний сервис консолидации.
func (s *RecipeService) ShoppingList(ctx context.Context, ac auth.Context, recipeIDs []string) ([]string, error) {
	lists := make([][]string, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		rec, err := s.getOwned(ctx, ac, id)
		if err != nil {
			return nil, err
		}
		lists = append(lists, rec.Ingredients)
	}
	return s.consolidator.Consolidate(ctx, lists)
}

// Submit отправляет рецепт во внешний менеджер, настроенный
// администратором. Ответ апстрима возвращается дословно.
func (s *RecipeService) Submit(ctx context.Context, ac auth.Context, id string) ([]byte, error) {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	baseURL, token, err := s.settings.IntegrationTarget(ctx)
	if err != nil {
		return nil, err
	}
	return s.submitter.Submit(ctx, baseURL, token, client.Submission{
		Name:         rec.Name,
		Description:  rec.Description,
		Ingredients:  rec.Ingredients,
		Instructions: rec.Instructions,
	})
}

// ExportMarkdown — рецепт как markdown-документ.
func (s *RecipeService) ExportMarkdown(ctx context.Context, ac auth.Context, id string) (string, error) {
	rec, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rec.Name)
	if rec.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", rec.Description)
	}
	if rec.Servings != nil {
		fmt.Fprintf(&b, "Servings: %d\n\n", *rec.Servings)
	}
	b.WriteString("## Ingredients\n\n")
	for _, ing := range rec.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}
	b.WriteString("\n## Instructions\n\n")
	for i, step := range rec.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	if len(rec.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(rec.Tags, ", "))
	}
	return b.String(), nil
}
