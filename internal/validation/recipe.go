package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

var (
	recipeTimePattern = regexp.MustCompile(`^\d+\s?(min|minutes)$`)
	amountPattern     = regexp.MustCompile(`^\d+(?: \d+\/\d+)?$|^\d+\/\d+$|^\d*(?:\.\d{1,2})?$`)
)

// RecipeValidator trims and validates recipe inputs before they reach the store
type RecipeValidator struct {
	validate *validator.Validate
}

// NewRecipeValidator creates a validator with the recipe specific rules registered
func NewRecipeValidator() *RecipeValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "recipe_time", func(fl validator.FieldLevel) bool {
		return recipeTimePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "amount", func(fl validator.FieldLevel) bool {
		return amountPattern.MatchString(fl.Field().String())
	})
	return &RecipeValidator{validate: v}
}

// mustRegister panics when a rule cannot be registered, otherwise the
// tag would silently stop validating
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// ValidateCreate trims in place and checks every field of a new recipe
func (rv *RecipeValidator) ValidateCreate(in *types.CreateRecipeInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.PrepTime = strings.TrimSpace(in.PrepTime)
	in.CookTime = strings.TrimSpace(in.CookTime)
	in.Instructions = trimAll(in.Instructions)
	in.Ingredients = trimIngredients(in.Ingredients)

	if err := rv.validate.Struct(in); err != nil {
		return toAppError(err)
	}
	return nil
}

// ValidateUpdate trims in place and checks only the changed fields
func (rv *RecipeValidator) ValidateUpdate(in *types.UpdateRecipeInput) error {
	if v, ok := in.Title.Get(); ok {
		in.Title = types.Changed(strings.TrimSpace(v))
		if err := rv.field("title", in.Title.Value(), "required,max=255"); err != nil {
			return err
		}
	}
	if v, ok := in.Description.Get(); ok {
		in.Description = types.Changed(strings.TrimSpace(v))
		if err := rv.field("description", in.Description.Value(), "required"); err != nil {
			return err
		}
	}
	if v, ok := in.PrepTime.Get(); ok {
		in.PrepTime = types.Changed(strings.TrimSpace(v))
		if err := rv.field("prepTime", in.PrepTime.Value(), "required,recipe_time"); err != nil {
			return err
		}
	}
	if v, ok := in.CookTime.Get(); ok {
		in.CookTime = types.Changed(strings.TrimSpace(v))
		if err := rv.field("cookTime", in.CookTime.Value(), "required,recipe_time"); err != nil {
			return err
		}
	}
	if v, ok := in.Servings.Get(); ok {
		if err := rv.field("servings", v, "gt=0"); err != nil {
			return err
		}
	}
	if v, ok := in.CategoryID.Get(); ok {
		if err := rv.field("categoryId", v, "required"); err != nil {
			return err
		}
	}
	if v, ok := in.Instructions.Get(); ok {
		in.Instructions = types.Changed(trimAll(v))
		if err := rv.field("instructions", in.Instructions.Value(), "dive,required"); err != nil {
			return err
		}
	}
	if v, ok := in.Ingredients.Get(); ok {
		trimmed := trimIngredients(v)
		in.Ingredients = types.Changed(trimmed)
		if len(trimmed) == 0 {
			return models.NewValidationError("ingredients must have at least 1 item", nil)
		}
		for i := range trimmed {
			if err := rv.validate.Struct(&trimmed[i]); err != nil {
				return toAppError(err)
			}
		}
	}
	if img, ok := in.Image.Get(); ok && img != nil {
		if err := rv.validate.Struct(img); err != nil {
			return toAppError(err)
		}
	}
	return nil
}

func (rv *RecipeValidator) field(name string, value interface{}, tag string) error {
	if err := rv.validate.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.NewValidationError(describe(name, verrs[0]), err)
		}
		return models.NewValidationError(fmt.Sprintf("%s is invalid", name), err)
	}
	return nil
}

func toAppError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("invalid recipe input", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fieldPath(fe.Namespace()), fe))
	}
	return models.NewValidationError(strings.Join(msgs, "; "), err)
}

// fieldPath drops the struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "recipe_time":
		return fmt.Sprintf("%s must be a number of minutes, e.g. \"15 min\"", name)
	case "amount":
		return fmt.Sprintf("%s must be a whole number, fraction, mixed number or decimal", name)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "base64":
		return fmt.Sprintf("%s must be base64 encoded", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func trimIngredients(in []types.IngredientInput) []types.IngredientInput {
	if in == nil {
		return nil
	}
	out := make([]types.IngredientInput, len(in))
	for i, ing := range in {
		out[i] = types.IngredientInput{
			Name:   strings.TrimSpace(ing.Name),
			Amount: strings.TrimSpace(ing.Amount),
			Unit:   strings.TrimSpace(ing.Unit),
		}
	}
	return out
}
