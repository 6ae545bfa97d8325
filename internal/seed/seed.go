// Package seed fills a store with demo content for local development. It writes through the
// resource service so every record passes the same validation as API writes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arzan03/ConsultCMS/internal/models"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/utils"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
)

// Options tunes a seeding run.
type Options struct {
	// Count is the number of records per content resource.
	Count int
	// Seed makes the generated content reproducible when non-zero.
	Seed    int64
	Workers int
}

// Factory builds fake payloads and writes them through the resource service.
type Factory struct {
	resources *resource.Service
	faker     *gofakeit.Faker
	opts      Options
	log       zerolog.Logger
}

func NewFactory(resources *resource.Service, opts Options, log zerolog.Logger) *Factory {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Count <= 0 {
		opts.Count = 10
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Factory{resources: resources, faker: gofakeit.New(opts.Seed), opts: opts, log: log}
}

// Run seeds every content resource and returns how many records were created per resource.
func (f *Factory) Run(ctx context.Context) (map[string]int, error) {
	categories, err := f.createAll(ctx, models.CategoriesResource, f.categories())
	if err != nil {
		return nil, err
	}
	trainingTypes, err := f.createAll(ctx, models.TrainingTypesResource, f.trainingTypes())
	if err != nil {
		return nil, err
	}

	summary := map[string]int{
		models.CategoriesResource:    len(categories),
		models.TrainingTypesResource: len(trainingTypes),
	}

	batches := []struct {
		name  string
		build func() map[string]any
	}{
		{models.BlogsResource, func() map[string]any { return f.blog(categories) }},
		{models.TrainingsResource, func() map[string]any { return f.training(trainingTypes) }},
		{models.EventsResource, f.event},
		{models.NoticesResource, f.notice},
		{models.GalleryResource, f.galleryItem},
		{models.DirectorsResource, f.director},
		{models.ReportsResource, f.report},
		{models.ContactsResource, f.contact},
	}
	for _, b := range batches {
		inputs := make([]map[string]any, f.opts.Count)
		for i := range inputs {
			inputs[i] = b.build()
		}
		ids, err := f.createAll(ctx, b.name, inputs)
		if err != nil {
			return summary, err
		}
		summary[b.name] = len(ids)
	}

	f.log.Info().Interface("created", summary).Msg("seeding finished")
	return summary, nil
}

// createAll writes inputs concurrently on a worker pool and returns the new identifiers.
func (f *Factory) createAll(ctx context.Context, name string, inputs []map[string]any) ([]string, error) {
	schema, ok := f.resources.Registry().Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %s", name)
	}

	var (
		mu   sync.Mutex
		ids  []string
		errs []error
	)
	pool := utils.NewWorkerPool(f.opts.Workers)
	for _, input := range inputs {
		input := input
		pool.AddTask(func() {
			doc, err := f.resources.Create(ctx, schema, input)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("seed %s: %w", name, err))
				return
			}
			ids = append(ids, doc.ID())
		})
	}
	pool.Wait()
	pool.Close()

	return ids, errors.Join(errs...)
}

func (f *Factory) categories() []map[string]any {
	names := []string{"Corporate Governance", "Trade Policy", "Risk Management", "Leadership"}
	out := make([]map[string]any, len(names))
	for i, name := range names {
		out[i] = map[string]any{"name": name, "description": f.faker.Sentence(12)}
	}
	return out
}

func (f *Factory) trainingTypes() []map[string]any {
	names := []string{"Workshop", "Certification", "Webinar"}
	out := make([]map[string]any, len(names))
	for i, name := range names {
		out[i] = map[string]any{"name": name, "description": f.faker.Sentence(8)}
	}
	return out
}

func (f *Factory) blog(categories []string) map[string]any {
	title := f.faker.Sentence(6)
	return map[string]any{
		"title":       title,
		"slug":        f.faker.UUID(),
		"excerpt":     f.faker.Sentence(15),
		"content":     "## " + f.faker.Sentence(4) + "\n\n" + f.faker.Paragraph(3, 4, 12, "\n\n"),
		"image":       fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		"category":    f.faker.RandomString(categories),
		"tags":        []string{f.faker.BuzzWord(), f.faker.BuzzWord()},
		"status":      f.faker.RandomString(models.BlogStatuses),
		"isPublished": f.faker.Bool(),
	}
}

func (f *Factory) training(types []string) map[string]any {
	start := f.faker.DateRange(time.Now(), time.Now().AddDate(0, 6, 0))
	return map[string]any{
		"title":        f.faker.JobTitle() + " Programme",
		"description":  f.faker.Paragraph(2, 3, 10, "\n\n"),
		"trainingType": f.faker.RandomString(types),
		"startDate":    start.Format(time.RFC3339),
		"endDate":      start.AddDate(0, 0, f.faker.Number(1, 5)).Format(time.RFC3339),
		"duration":     fmt.Sprintf("%d days", f.faker.Number(1, 5)),
		"location":     f.faker.City(),
		"fee":          f.faker.Price(100, 2000),
		"isPublished":  f.faker.Bool(),
	}
}

func (f *Factory) event() map[string]any {
	return map[string]any{
		"title":            f.faker.Sentence(4),
		"description":      f.faker.Paragraph(1, 3, 10, "\n"),
		"date":             f.faker.DateRange(time.Now(), time.Now().AddDate(1, 0, 0)).Format(time.RFC3339),
		"location":         f.faker.City(),
		"registrationLink": f.faker.URL(),
		"isPublished":      f.faker.Bool(),
	}
}

func (f *Factory) notice() map[string]any {
	return map[string]any{
		"title":       f.faker.Sentence(5),
		"description": f.faker.Paragraph(1, 2, 10, "\n"),
		"publishedAt": f.faker.PastDate().Format(time.RFC3339),
		"isPublished": f.faker.Bool(),
	}
}

func (f *Factory) galleryItem() map[string]any {
	return map[string]any{
		"title":       f.faker.Sentence(3),
		"image":       fmt.Sprintf("https://picsum.photos/seed/%s/1200/800", f.faker.UUID()),
		"description": f.faker.Sentence(10),
		"category":    f.faker.RandomString([]string{"Events", "Trainings", "Office"}),
	}
}

func (f *Factory) director() map[string]any {
	return map[string]any{
		"name":     f.faker.Name(),
		"position": f.faker.RandomString([]string{"Chair", "Managing Director", "Board Member", "Advisor"}),
		"bio":      f.faker.Paragraph(1, 3, 12, "\n"),
		"image":    fmt.Sprintf("https://picsum.photos/seed/%s/400/400", f.faker.UUID()),
		"order":    f.faker.Number(1, 20),
	}
}

func (f *Factory) report() map[string]any {
	return map[string]any{
		"title":       f.faker.Sentence(6),
		"category":    f.faker.RandomString(models.ReportCategories),
		"description": f.faker.Sentence(20),
		"file":        fmt.Sprintf("https://example.com/reports/%s.pdf", f.faker.UUID()),
		"publishedAt": f.faker.PastDate().Format(time.RFC3339),
		"isPublished": f.faker.Bool(),
	}
}

func (f *Factory) contact() map[string]any {
	return map[string]any{
		"name":    f.faker.Name(),
		"email":   f.faker.Email(),
		"phone":   f.faker.Phone(),
		"subject": f.faker.Sentence(4),
		"message": f.faker.Paragraph(1, 2, 10, "\n"),
		"status":  f.faker.RandomString(models.ContactStatuses),
	}
}
