package entity

// Categorías de material (CHECK en materials.category).
type MaterialCategory string

const (
	CategoryWood       MaterialCategory = "wood"
	CategoryMetal      MaterialCategory = "metal"
	CategoryPlastic    MaterialCategory = "plastic"
	CategoryFabric     MaterialCategory = "fabric"
	CategoryPaint      MaterialCategory = "paint"
	CategoryHardware   MaterialCategory = "hardware"
	CategoryElectrical MaterialCategory = "electrical"
	CategoryPlumbing   MaterialCategory = "plumbing"
	CategoryAdhesive   MaterialCategory = "adhesive"
	CategoryTools      MaterialCategory = "tools"
	CategoryOther      MaterialCategory = "other"
)

// MaterialCategories lista las categorías válidas en el orden en que se reportan.
var MaterialCategories = []MaterialCategory{
	CategoryWood, CategoryMetal, CategoryPlastic, CategoryFabric, CategoryPaint,
	CategoryHardware, CategoryElectrical, CategoryPlumbing, CategoryAdhesive,
	CategoryTools, CategoryOther,
}

func (c MaterialCategory) Valid() bool { return contains(MaterialCategories, c) }

// Unidades de medida (CHECK en materials.unit).
type Unit string

const (
	UnitPiece       Unit = "piece"
	UnitMeter       Unit = "meter"
	UnitSquareMeter Unit = "square_meter"
	UnitLiter       Unit = "liter"
	UnitKilogram    Unit = "kilogram"
	UnitGram        Unit = "gram"
	UnitBox         Unit = "box"
	UnitRoll        Unit = "roll"
	UnitSheet       Unit = "sheet"
	UnitSet         Unit = "set"
)

var Units = []Unit{
	UnitPiece, UnitMeter, UnitSquareMeter, UnitLiter, UnitKilogram,
	UnitGram, UnitBox, UnitRoll, UnitSheet, UnitSet,
}

func (u Unit) Valid() bool { return contains(Units, u) }

// Dificultad de un proyecto.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

var Difficulties = []Difficulty{
	DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert,
}

func (d Difficulty) Valid() bool { return contains(Difficulties, d) }

// Categoría de proyecto.
type ProjectCategory string

const (
	ProjectWoodworking     ProjectCategory = "woodworking"
	ProjectElectronics     ProjectCategory = "electronics"
	ProjectHomeImprovement ProjectCategory = "home_improvement"
	ProjectGardening       ProjectCategory = "gardening"
	ProjectCrafts          ProjectCategory = "crafts"
	ProjectSewing          ProjectCategory = "sewing"
	ProjectMetalworking    ProjectCategory = "metalworking"
	ProjectPainting        ProjectCategory = "painting"
	ProjectPlumbing        ProjectCategory = "plumbing"
	ProjectOther           ProjectCategory = "other"
)

var ProjectCategories = []ProjectCategory{
	ProjectWoodworking, ProjectElectronics, ProjectHomeImprovement, ProjectGardening,
	ProjectCrafts, ProjectSewing, ProjectMetalworking, ProjectPainting,
	ProjectPlumbing, ProjectOther,
}

func (c ProjectCategory) Valid() bool { return contains(ProjectCategories, c) }

// Estado de un proyecto: planning → in_progress → {completed, paused, cancelled}.
// El modelo es permisivo: Update acepta cualquier estado enumerado desde cualquier otro.
type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "planning"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusPaused     ProjectStatus = "paused"
	StatusCancelled  ProjectStatus = "cancelled"
)

var ProjectStatuses = []ProjectStatus{
	StatusPlanning, StatusInProgress, StatusCompleted, StatusPaused, StatusCancelled,
}

func (s ProjectStatus) Valid() bool { return contains(ProjectStatuses, s) }

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
