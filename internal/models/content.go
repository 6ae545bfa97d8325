package models

import "github.com/arzan03/ConsultCMS/internal/resource"

// Resource route names.
const (
	BlogsResource         = "blogs"
	CategoriesResource    = "categories"
	TrainingsResource     = "trainings"
	TrainingTypesResource = "training-types"
	EventsResource        = "events"
	NoticesResource       = "notices"
	ContactsResource      = "contacts"
	GalleryResource       = "gallery"
	DirectorsResource     = "directors"
	UsersResource         = "users"
	ReportsResource       = "reports"
)

var (
	BlogStatuses    = []string{"draft", "review", "published"}
	ContactStatuses = []string{"new", "read", "replied"}
	// ReportCategories is the closed set of report categories shown on the public site.
	ReportCategories = []string{
		"Annual Reports",
		"Research Papers",
		"Policy Briefs",
		"Trade Forums",
		"Case Studies",
		"Newsletters",
	}
)

func Blog() *resource.Schema {
	return &resource.Schema{
		Name:       BlogsResource,
		Collection: "blogs",
		Label:      "Blog",
		Update:     resource.Merge,
		Populate:   []string{"category", "author"},
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "title", Kind: resource.String, Required: true, MaxLength: 200, Searchable: true},
			{Name: "slug", Kind: resource.String, MaxLength: 200, Filterable: true, Lowercase: true},
			{Name: "excerpt", Kind: resource.String, MaxLength: 500, Searchable: true},
			{Name: "content", Kind: resource.Text, Required: true, Searchable: true, Markdown: true},
			{Name: "image", Kind: resource.File},
			{Name: "category", Kind: resource.Ref, Ref: CategoriesResource, Required: true, Filterable: true},
			{Name: "author", Kind: resource.Ref, Ref: UsersResource, Filterable: true},
			{Name: "tags", Kind: resource.StringList, Filterable: true},
			{Name: "status", Kind: resource.Enum, Values: BlogStatuses, Default: "draft", Filterable: true},
			{Name: "isPublished", Kind: resource.Bool, Default: false, Filterable: true},
		},
		PublishedField: "isPublished",
	}
}

func Category() *resource.Schema {
	return &resource.Schema{
		Name:       CategoriesResource,
		Collection: "categories",
		Label:      "Category",
		Update:     resource.Replace,
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "name", Kind: resource.String, Required: true, MaxLength: 100, Searchable: true},
			{Name: "description", Kind: resource.Text, MaxLength: 1000, Searchable: true},
		},
	}
}

func Training() *resource.Schema {
	return &resource.Schema{
		Name:       TrainingsResource,
		Collection: "trainings",
		Label:      "Training",
		Update:     resource.Merge,
		Populate:   []string{"trainingType"},
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "title", Kind: resource.String, Required: true, MaxLength: 200, Searchable: true},
			{Name: "description", Kind: resource.Text, Required: true, Searchable: true, Markdown: true},
			{Name: "trainingType", Kind: resource.Ref, Ref: TrainingTypesResource, Required: true, Filterable: true},
			{Name: "startDate", Kind: resource.Date},
			{Name: "endDate", Kind: resource.Date},
			{Name: "duration", Kind: resource.String, MaxLength: 100},
			{Name: "location", Kind: resource.String, MaxLength: 200, Searchable: true},
			{Name: "fee", Kind: resource.Number},
			{Name: "image", Kind: resource.File},
			{Name: "isPublished", Kind: resource.Bool, Default: false, Filterable: true},
		},
		PublishedField: "isPublished",
	}
}

func TrainingType() *resource.Schema {
	return &resource.Schema{
		Name:       TrainingTypesResource,
		Collection: "trainingtypes",
		Label:      "Training type",
		Update:     resource.Replace,
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "name", Kind: resource.String, Required: true, MaxLength: 100, Searchable: true},
			{Name: "description", Kind: resource.Text, MaxLength: 1000},
		},
	}
}

func Event() *resource.Schema {
	return &resource.Schema{
		Name:       EventsResource,
		Collection: "events",
		Label:      "Event",
		Update:     resource.Merge,
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "title", Kind: resource.String, Required: true, MaxLength: 200, Searchable: true},
			{Name: "description", Kind: resource.Text, Required: true, Searchable: true},
			{Name: "date", Kind: resource.Date, Required: true},
			{Name: "location", Kind: resource.String, Required: true, MaxLength: 200, Searchable: true},
			{Name: "image", Kind: resource.File},
			{Name: "registrationLink", Kind: resource.String, MaxLength: 500},
			{Name: "isPublished", Kind: resource.Bool, Default: false, Filterable: true},
		},
		PublishedField: "isPublished",
	}
}

func Notice() *resource.Schema {
	return &resource.Schema{
		Name:       NoticesResource,
		Collection: "notices",
		Label:      "Notice",
		Update:     resource.Merge,
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "title", Kind: resource.String, Required: true, MaxLength: 200, Searchable: true},
			{Name: "description", Kind: resource.Text, Required: true, Searchable: true, Markdown: true},
			{Name: "file", Kind: resource.File},
			{Name: "publishedAt", Kind: resource.Date},
			{Name: "isPublished", Kind: resource.Bool, Default: false, Filterable: true},
		},
		PublishedField: "isPublished",
	}
}

// Contact is a message from the public contact form; anyone may create one.
func Contact() *resource.Schema {
	return &resource.Schema{
		Name:         ContactsResource,
		Collection:   "contacts",
		Label:        "Contact",
		Update:       resource.Merge,
		PublicCreate: true,
		Fields: []resource.Field{
			{Name: "name", Kind: resource.String, Required: true, MaxLength: 100, Searchable: true},
			{Name: "email", Kind: resource.Email, Required: true, MaxLength: 200, Searchable: true, Lowercase: true},
			{Name: "phone", Kind: resource.String, MaxLength: 30},
			{Name: "subject", Kind: resource.String, MaxLength: 200, Searchable: true},
			{Name: "message", Kind: resource.Text, Required: true, MaxLength: 5000, Searchable: true},
			{Name: "status", Kind: resource.Enum, Values: ContactStatuses, Default: "new", Filterable: true},
		},
	}
}

func Gallery() *resource.Schema {
	return &resource.Schema{
		Name:       GalleryResource,
		Collection: "gallery",
		Label:      "Gallery item",
		Update:     resource.Replace,
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "title", Kind: resource.String, Required: true, MaxLength: 200, Searchable: true},
			{Name: "image", Kind: resource.File, Required: true, KeepWhenOmitted: true},
			{Name: "description", Kind: resource.Text, MaxLength: 1000},
			{Name: "category", Kind: resource.String, MaxLength: 100, Filterable: true},
		},
	}
}

func Director() *resource.Schema {
	return &resource.Schema{
		Name:       DirectorsResource,
		Collection: "directors",
		Label:      "Director",
		Update:     resource.Replace,
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "name", Kind: resource.String, Required: true, MaxLength: 100, Searchable: true},
			{Name: "position", Kind: resource.String, Required: true, MaxLength: 100, Searchable: true},
			{Name: "bio", Kind: resource.Text, MaxLength: 5000},
			{Name: "image", Kind: resource.File, KeepWhenOmitted: true},
			{Name: "order", Kind: resource.Number},
		},
	}
}

func Report() *resource.Schema {
	return &resource.Schema{
		Name:       ReportsResource,
		Collection: "reports",
		Label:      "Report",
		Update:     resource.Replace,
		PublicRead: true,
		Fields: []resource.Field{
			{Name: "title", Kind: resource.String, Required: true, MaxLength: 200, Searchable: true},
			{Name: "category", Kind: resource.Enum, Values: ReportCategories, Required: true, Filterable: true},
			{Name: "description", Kind: resource.Text, MaxLength: 2000, Searchable: true},
			{Name: "file", Kind: resource.File, Required: true, KeepWhenOmitted: true},
			{Name: "publishedAt", Kind: resource.Date},
			{Name: "isPublished", Kind: resource.Bool, Default: false, Filterable: true},
		},
		PublishedField: "isPublished",
	}
}
