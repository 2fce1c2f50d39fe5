// Package importer validates and stores athlete data arriving from file
// imports or single-row entry. Rows that cannot be stored are skipped and
// reported; an import only fails outright when its columns are unusable.
package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/piste/internal/domain/category"
	"github.com/okian/piste/internal/domain/dedupe"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/numeric"
	"github.com/okian/piste/pkg/logger"
	"github.com/okian/piste/pkg/metrics"
)

// Kind names an importable table.
type Kind string

// Import kinds.
const (
	KindAthletes     Kind = "athletes"
	KindPisteResults Kind = "pisteresults"
	KindCompResults  Kind = "compresults"
	KindTraining     Kind = "training"
	KindEnvironment  Kind = "environment"
	KindBigResults   Kind = "bigresults"
)

// Kinds lists every import kind.
var Kinds = []Kind{KindAthletes, KindPisteResults, KindCompResults, KindTraining, KindEnvironment, KindBigResults} //nolint:gochecknoglobals // fixed catalogue

// Store is the part of the data store the importer needs.
type Store interface {
	FetchAll(ctx context.Context, table string, filters model.Row) ([]model.Row, error)
	Upsert(ctx context.Context, table string, key, fields model.Row) error
	Delete(ctx context.Context, table string, filters model.Row) (int, error)
}

// Skip is a row left out of an import. Row is 1-based over the data rows.
type Skip struct {
	Row    int    `json:"row"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// Result summarizes an import.
type Result struct {
	Kind    Kind   `json:"kind"`
	Stored  int    `json:"stored"`
	Skipped []Skip `json:"skipped,omitempty"`
}

func (r *Result) skip(row int, key, reason string) {
	r.Skipped = append(r.Skipped, Skip{Row: row, Key: key, Reason: reason})
}

// Importer writes imported rows to a Store.
type Importer struct {
	store  Store
	now    func() time.Time
	logger logger.Logger
}

// New creates an Importer.
func New(store Store, opts ...Option) *Importer {
	im := &Importer{store: store, now: time.Now}
	for _, opt := range opts {
		opt(im)
	}
	if im.logger == nil {
		im.logger = logger.Get().Named("importer")
	}
	return im
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Import stores rows of the given kind.
func (im *Importer) Import(ctx context.Context, kind Kind, rows []model.Row) (*Result, error) {
	recs := make([]record, len(rows))
	for i, r := range rows {
		recs[i] = normalize(r)
	}

	var (
		res *Result
		err error
	)
	switch kind {
	case KindAthletes:
		res, err = im.athletes(ctx, recs)
	case KindPisteResults:
		res, err = im.pisteResults(ctx, recs)
	case KindCompResults:
		res, err = im.compResults(ctx, recs)
	case KindTraining:
		res, err = im.training(ctx, recs)
	case KindEnvironment:
		res, err = im.environment(ctx, recs)
	case KindBigResults:
		res, err = im.bigResults(ctx, recs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		metrics.RecordImport(string(kind), "error", 1)
		return nil, err
	}

	metrics.RecordImport(string(kind), "stored", res.Stored)
	metrics.RecordImport(string(kind), "skipped", len(res.Skipped))
	im.logger.Info(ctx, "import finished",
		logger.String("kind", string(kind)),
		logger.Int("rows", len(rows)),
		logger.Int("stored", res.Stored),
		logger.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// directory indexes athletes for row matching.
type directory struct {
	byName   natkey.Index[model.Athlete]
	byPerson natkey.Index[model.Athlete]
}

func (im *Importer) directory(ctx context.Context) (*directory, error) {
	rows, err := im.store.FetchAll(ctx, model.TableAthletes, nil)
	if err != nil {
		return nil, fmt.Errorf("read athletes: %w", err)
	}
	all := make([]model.Athlete, 0, len(rows))
	for _, r := range rows {
		all = append(all, model.AthleteFromRow(r))
	}
	return &directory{
		byName:   natkey.NewIndex(all, model.Athlete.NameKey),
		byPerson: natkey.NewIndex(all, model.Athlete.PersonKey),
	}, nil
}

// match finds an athlete by name, narrowed by birthdate when one is given.
func (d *directory) match(first, last, birthdate string) (model.Athlete, bool) {
	if birthdate != "" {
		if t, ok := model.ParseBirthdate(birthdate); ok {
			birthdate = t.Format(time.DateOnly)
		}
		return d.byPerson.First(natkey.Person(first, last, birthdate))
	}
	return d.byName.First(natkey.Name(first, last))
}

func (im *Importer) bands(ctx context.Context) ([]model.AgeCategoryBand, error) {
	rows, err := im.store.FetchAll(ctx, model.TableAgeCategories, nil)
	if err != nil {
		return nil, fmt.Errorf("read age categories: %w", err)
	}
	out := make([]model.AgeCategoryBand, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.AgeCategoryBandFromRow(r))
	}
	return out, nil
}

// athletes inserts new athletes. A natural key already stored or repeated
// within the file is skipped.
func (im *Importer) athletes(ctx context.Context, recs []record) (*Result, error) {
	required := []string{"first_name", "last_name", "birthdate", "sex", "club", "nationalteam"}
	if err := requireColumns(recs, required...); err != nil {
		return nil, err
	}
	existing, err := im.store.FetchAll(ctx, model.TableAthletes, nil)
	if err != nil {
		return nil, fmt.Errorf("read athletes: %w", err)
	}
	bands, err := im.bands(ctx)
	if err != nil {
		return nil, err
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
	for _, r := range existing {
		seen.SeenAndRecord(ctx, string(model.AthleteFromRow(r).PersonKey()))
	}

	res := &Result{Kind: KindAthletes}
	year := im.now().Year()
	for i, rec := range recs {
		n := i + 1
		if miss := rec.missing(required...); len(miss) > 0 {
			res.skip(n, "", "missing "+strings.Join(miss, ", "))
			continue
		}
		born, ok := model.ParseBirthdate(rec.str("birthdate"))
		if !ok {
			res.skip(n, "", "invalid birthdate")
			continue
		}
		a := model.Athlete{
			ID:           uuid.NewString(),
			FirstName:    rec.str("first_name"),
			LastName:     rec.str("last_name"),
			Birthdate:    born.Format(time.DateOnly),
			Sex:          natkey.Sex(rec.str("sex")),
			Club:         rec.str("club"),
			NationalTeam: rec.str("nationalteam"),
			Vintage:      born.Year(),
		}
		if seen.SeenAndRecord(ctx, string(a.PersonKey())) {
			res.skip(n, string(a.PersonKey()), "duplicate athlete")
			continue
		}
		a.Category, _ = category.Resolve(a.Vintage, year, bands)
		if err := im.store.Upsert(ctx, model.TableAthletes, model.Row{"id": a.ID}, a.Row()); err != nil {
			seen.Unrecord(ctx, string(a.PersonKey()))
			res.skip(n, string(a.PersonKey()), err.Error())
			continue
		}
		res.Stored++
	}
	return res, nil
}

// pisteResults stores one row per discipline column of each input row.
// Values at or below zero are left out; the no-result sentinel is kept with
// zero points. Points are assigned by the piste stage.
func (im *Importer) pisteResults(ctx context.Context, recs []record) (*Result, error) {
	if err := requireColumns(recs, "first_name", "last_name"); err != nil {
		return nil, err
	}
	dir, err := im.directory(ctx)
	if err != nil {
		return nil, err
	}
	bands, err := im.bands(ctx)
	if err != nil {
		return nil, err
	}

	columns := map[string]string{}
	for _, d := range model.PisteDisciplines {
		columns[natkey.Column(d)] = d
	}

	res := &Result{Kind: KindPisteResults}
	for i, rec := range recs {
		n := i + 1
		year, ok := rec.year()
		if !ok {
			res.skip(n, "", "missing pisteyear")
			continue
		}
		first, last := rec.str("first_name"), rec.str("last_name")
		a, ok := dir.match(first, last, rec.str("birthdate"))
		if !ok {
			res.skip(n, string(natkey.Name(first, last)), "unknown athlete")
			continue
		}
		cat, _ := category.Resolve(a.Vintage, year, bands)

		for col, v := range rec {
			discipline, known := columns[col]
			if !known {
				continue
			}
			raw := rec.row().String(col)
			result := model.TestResult{
				AthleteID:  a.ID,
				FirstName:  a.FirstName,
				LastName:   a.LastName,
				Discipline: discipline,
				Year:       year,
				Result:     raw,
				Category:   cat,
				Sex:        natkey.Sex(a.Sex),
			}
			if raw == model.SentinelNoResult {
				result.Points = numeric.Float(0)
			} else if f, ok := numeric.Parse(v); !ok || f <= 0 {
				continue
			}
			if err := im.store.Upsert(ctx, model.TablePisteResults, result.Key(), result.Row()); err != nil {
				res.skip(n, fmt.Sprintf("%s/%s", a.NameKey(), discipline), err.Error())
				continue
			}
			res.Stored++
		}
	}
	return res, nil
}

// compResults stores competition starts keyed by athlete, competition,
// discipline and round.
func (im *Importer) compResults(ctx context.Context, recs []record) (*Result, error) {
	required := []string{"first_name", "last_name", "competition", "discipline", "points"}
	if err := requireColumns(recs, required...); err != nil {
		return nil, err
	}
	dir, err := im.directory(ctx)
	if err != nil {
		return nil, err
	}
	bands, err := im.bands(ctx)
	if err != nil {
		return nil, err
	}
	comps, err := im.store.FetchAll(ctx, model.TableCompetitions, nil)
	if err != nil {
		return nil, fmt.Errorf("read competitions: %w", err)
	}
	years := map[natkey.Key]int{}
	for _, r := range comps {
		c := model.CompetitionFromRow(r)
		years[natkey.Of(c.Name)] = c.PisteYear
	}

	res := &Result{Kind: KindCompResults}
	for i, rec := range recs {
		n := i + 1
		if miss := rec.missing(required...); len(miss) > 0 {
			res.skip(n, "", "missing "+strings.Join(miss, ", "))
			continue
		}
		first, last := rec.str("first_name"), rec.str("last_name")
		a, ok := dir.match(first, last, rec.str("birthdate"))
		if !ok {
			res.skip(n, string(natkey.Name(first, last)), "unknown athlete")
			continue
		}
		points, ok := rec.num("points")
		if !ok {
			res.skip(n, string(a.NameKey()), "invalid points")
			continue
		}

		cr := model.CompetitionResult{
			AthleteID:   a.ID,
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			Sex:         natkey.Sex(rec.str("sex")),
			Category:    rec.str("category", "CategoryStart"),
			Competition: rec.str("competition"),
			Discipline:  rec.str("discipline"),
			PreFin:      rec.str("PreFin"),
			Points:      &points,
		}
		if cr.Sex == "" {
			cr.Sex = natkey.Sex(a.Sex)
		}
		if cr.Category == "" {
			if y, ok := years[natkey.Of(cr.Competition)]; ok && y > 0 {
				cr.Category, _ = category.Resolve(a.Vintage, y, bands)
			}
		}
		if d, ok := rec.num("difficulty"); ok {
			cr.Difficulty = &d
		}
		if err := im.store.Upsert(ctx, model.TableCompResults, cr.Key(), cr.Row()); err != nil {
			res.skip(n, string(a.NameKey()), err.Error())
			continue
		}
		res.Stored++
	}
	return res, nil
}

// training stores survey answers. Answers must lie in 0..5 and weekly hours in 0..40.
func (im *Importer) training(ctx context.Context, recs []record) (*Result, error) {
	if err := requireColumns(recs, "first_name", "last_name"); err != nil {
		return nil, err
	}
	dir, err := im.directory(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindTraining}
rows:
	for i, rec := range recs {
		n := i + 1
		year, ok := rec.year()
		if !ok {
			res.skip(n, "", "missing pisteyear")
			continue
		}
		first, last := rec.str("first_name"), rec.str("last_name")
		a, ok := dir.match(first, last, rec.str("birthdate"))
		if !ok {
			res.skip(n, string(natkey.Name(first, last)), "unknown athlete")
			continue
		}

		tp := model.TrainingPerformance{AthleteID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Year: year}
		for q := range tp.Answers {
			col := fmt.Sprintf("q%d", q+1)
			v, ok := rec.num(col)
			if !ok {
				continue
			}
			if v < 0 || v > 5 {
				res.skip(n, string(a.NameKey()), col+" out of range 0..5")
				continue rows
			}
			tp.Answers[q] = numeric.Float(v)
		}
		if h, ok := rec.num("trainingtime"); ok {
			if h < 0 || h > 40 {
				res.skip(n, string(a.NameKey()), "trainingtime out of range 0..40")
				continue
			}
			tp.TrainingTime = &h
		}
		if since, ok := rec.num("trainingsince"); ok {
			s := int(since)
			tp.TrainingSince = &s
		}
		if err := im.store.Upsert(ctx, model.TableTrainingPerformance, tp.Key(), tp.Row()); err != nil {
			res.skip(n, string(a.NameKey()), err.Error())
			continue
		}
		res.Stored++
	}
	return res, nil
}

// environment stores tool-environment ratings. The athlete must match on
// name and birthdate.
func (im *Importer) environment(ctx context.Context, recs []record) (*Result, error) {
	required := []string{"first_name", "last_name", "birthdate", "toolenvvalue"}
	if err := requireColumns(recs, required...); err != nil {
		return nil, err
	}
	dir, err := im.directory(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindEnvironment}
	for i, rec := range recs {
		n := i + 1
		if miss := rec.missing(required...); len(miss) > 0 {
			res.skip(n, "", "missing "+strings.Join(miss, ", "))
			continue
		}
		year, ok := rec.year()
		if !ok {
			res.skip(n, "", "missing pisteyear")
			continue
		}
		first, last := rec.str("first_name"), rec.str("last_name")
		a, ok := dir.match(first, last, rec.str("birthdate"))
		if !ok {
			res.skip(n, string(natkey.Person(first, last, rec.str("birthdate"))), "unknown athlete")
			continue
		}
		v, ok := rec.num("toolenvvalue")
		if !ok || v < 1 || v > 5 || v != float64(int(v)) {
			res.skip(n, string(a.NameKey()), "toolenvvalue must be 1..5")
			continue
		}
		key := model.Row{"athlete_id": a.ID, "pisteyear": year}
		fields := model.Row{
			"first_name":   a.FirstName,
			"last_name":    a.LastName,
			"birthdate":    a.Birthdate,
			"toolenvvalue": int(v),
		}
		if err := im.store.Upsert(ctx, model.TableEnvironment, key, fields); err != nil {
			res.skip(n, string(a.NameKey()), err.Error())
			continue
		}
		res.Stored++
	}
	return res, nil
}

// bigResults inserts reference results of major championships. A key
// already stored or repeated within the file is skipped.
func (im *Importer) bigResults(ctx context.Context, recs []record) (*Result, error) {
	required := []string{"competition", "year", "discipline", "category", "sex", "rank", "points"}
	if err := requireColumns(recs, required...); err != nil {
		return nil, err
	}
	existing, err := im.store.FetchAll(ctx, model.TableBigResults, nil)
	if err != nil {
		return nil, fmt.Errorf("read big results: %w", err)
	}
	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
	for _, r := range existing {
		seen.SeenAndRecord(ctx, string(model.BigResultFromRow(r).Key()))
	}

	res := &Result{Kind: KindBigResults}
	for i, rec := range recs {
		n := i + 1
		if miss := rec.missing(required...); len(miss) > 0 {
			res.skip(n, "", "missing "+strings.Join(miss, ", "))
			continue
		}
		year, ok := rec.year()
		if !ok {
			res.skip(n, "", "invalid year")
			continue
		}
		points, ok := rec.num("points")
		if !ok {
			res.skip(n, "", "invalid points")
			continue
		}
		b := model.BigResult{
			Competition: rec.str("competition"),
			Year:        year,
			Discipline:  rec.str("discipline"),
			Category:    rec.str("category"),
			Sex:         natkey.Sex(rec.str("sex")),
			Rank:        rec.str("rank"),
			Points:      &points,
		}
		if seen.SeenAndRecord(ctx, string(b.Key())) {
			res.skip(n, string(b.Key()), "duplicate result")
			continue
		}
		if err := im.store.Upsert(ctx, model.TableBigResults, model.Row{"id": uuid.NewString()}, b.Row()); err != nil {
			seen.Unrecord(ctx, string(b.Key()))
			res.skip(n, string(b.Key()), err.Error())
			continue
		}
		res.Stored++
	}
	return res, nil
}

// DeleteAthlete removes an athlete and its piste results.
func (im *Importer) DeleteAthlete(ctx context.Context, id string) (int, error) {
	n, err := im.store.Delete(ctx, model.TablePisteResults, model.Row{"athlete_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete piste results: %w", err)
	}
	deleted, err := im.store.Delete(ctx, model.TableAthletes, model.Row{"id": id})
	if err != nil {
		return n, fmt.Errorf("delete athlete: %w", err)
	}
	if deleted == 0 {
		return n, fmt.Errorf("%w: athlete %s", ErrNotFound, id)
	}
	im.logger.Info(ctx, "athlete deleted", logger.String("id", id), logger.Int("results", n))
	return n, nil
}
