package model

// Store table names.
const (
	TableAthletes            = "athletes"
	TableAgeCategories       = "agecategories"
	TableScoreTables         = "scoretables"
	TablePisteResults        = "pisteresults"
	TableCompetitions        = "competitions"
	TableCompResults         = "compresults"
	TableSelectionPoints     = "selectionpoints"
	TableAgeDives            = "agedives"
	TableRefCompPoints       = "pisterefcomppoints"
	TableRefCompResults      = "pisterefcompresults"
	TableRefMinPoints        = "pisterefminpoints"
	TableRefTrainingSince    = "pistereftrainingsince"
	TableRefTrainingTime     = "pistereftrainingtime"
	TableTrainingPerformance = "trainingperformance"
	TableEnvironment         = "pisteenvironment"
	TableSocValues           = "socadditionalvalues"
	TableBigResults          = "compresultsbig"
)

// Disciplines with special handling.
const (
	DisciplineBodySize      = "BodySize"
	DisciplineUpperBodySize = "UpperBodySize"
	DisciplineBodyWeight    = "BodyWeight"
	DisciplineNumberOfDisc  = "NumberOfDisc"

	// Synthetic piste aggregates.
	DisciplineTotal   = "PisteTotalinPoints"
	DisciplineAverage = "PistePointsDurchschnitt"

	// Score tables used only by the SOC composite.
	DisciplineCompPerfPoints  = "CompPerfPointsCalc"
	DisciplineCompPerfQuality = "CompPerfQualityCalc"
	DisciplineCompPerfEnhance = "CompPerfEnhance"
	DisciplineBioAgeAdjust    = "BioAgeAdjust"
	DisciplineMaturation      = "MaturationAdjust"
)

// PisteDisciplines lists the piste test columns in their display order.
var PisteDisciplines = []string{ //nolint:gochecknoglobals // fixed discipline catalogue
	DisciplineBodyWeight,
	DisciplineBodySize,
	DisciplineUpperBodySize,
	"JumpHeight",
	"102c",
	"202c",
	"302c",
	"402c",
	"ABSWallbar",
	"ShoulderEvel",
	"ShoulderExt",
	"PikePosition",
	"Split",
	"Handstand",
	"PullUp",
	"GlobalCore",
	DisciplineNumberOfDisc,
}

// SentinelNoResult marks a piste value as exempt: stored, never scored.
const SentinelNoResult = "9999"

// TimestampLayout is the layout of compresults.timestamp.
const TimestampLayout = "2006-01-02 15:04:05"
