package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/piste/internal/adapters/repository"
	"github.com/okian/piste/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// contract runs the Store behaviour every backend must share.
func contract(t *testing.T, name string, open func() repository.Store) {
	Convey("Given a "+name+" store", t, func() {
		ctx := context.Background()
		store := open()
		defer func() { _ = store.Close() }()
		repo := repository.NewRepo(store, repository.WithPageSize(3))

		Convey("When rows are upserted by natural key", func() {
			key := model.Row{"first_name": "Lena", "last_name": "Roth", "pisteyear": 2025}
			So(repo.Upsert(ctx, "socadditionalvalues", key, model.Row{"totalpoints": 410.5}), ShouldBeNil)
			So(repo.Upsert(ctx, "socadditionalvalues", key, model.Row{"talentcard": "Regional"}), ShouldBeNil)

			rows, err := repo.FetchAll(ctx, "socadditionalvalues", model.Row{"pisteyear": "2025"})

			Convey("Then a single merged row exists with an id", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].String("talentcard"), ShouldEqual, "Regional")
				v, _ := rows[0].Float("totalpoints")
				So(v, ShouldEqual, 410.5)
				So(rows[0].String("id"), ShouldNotBeBlank)
			})

			Convey("Then last write wins on the same field", func() {
				So(repo.Upsert(ctx, "socadditionalvalues", key, model.Row{"talentcard": "National"}), ShouldBeNil)
				rows, _ := repo.FetchAll(ctx, "socadditionalvalues", key)
				So(rows[0].String("talentcard"), ShouldEqual, "National")
			})
		})

		Convey("When more rows exist than a page holds", func() {
			for i := 0; i < 7; i++ {
				So(repo.Upsert(ctx, "pisteresults", model.Row{"athlete_id": fmt.Sprintf("a%d", i), "pisteyear": 2025}, model.Row{"points": i}), ShouldBeNil)
			}
			So(repo.Upsert(ctx, "pisteresults", model.Row{"athlete_id": "old", "pisteyear": 2024}, model.Row{"points": 1}), ShouldBeNil)

			Convey("Then Fetch honors offset and limit in insertion order", func() {
				page, err := repo.Fetch(ctx, "pisteresults", model.Row{"pisteyear": 2025}, repository.Page{Offset: 3, Limit: 3})
				So(err, ShouldBeNil)
				So(len(page), ShouldEqual, 3)
				So(page[0].String("athlete_id"), ShouldEqual, "a3")
			})

			Convey("Then FetchAll loops until a short page", func() {
				rows, err := repo.FetchAll(ctx, "pisteresults", model.Row{"pisteyear": 2025})
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 7)
				So(rows[6].String("athlete_id"), ShouldEqual, "a6")
			})

			Convey("Then an exact multiple of the page size terminates", func() {
				_, err := repo.Delete(ctx, "pisteresults", model.Row{"athlete_id": "a6"})
				So(err, ShouldBeNil)
				rows, err := repo.FetchAll(ctx, "pisteresults", model.Row{"pisteyear": 2025})
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 6)
			})
		})

		Convey("When filtering on an absent field", func() {
			So(repo.Upsert(ctx, "compresults", model.Row{"id": "r1"}, model.Row{"points": 200}), ShouldBeNil)
			So(repo.Upsert(ctx, "compresults", model.Row{"id": "r2"}, model.Row{"points": 210, "timestamp": "2025-01-01 10:00:00"}), ShouldBeNil)
			So(repo.Upsert(ctx, "compresults", model.Row{"id": "r3"}, model.Row{"points": 220, "timestamp": nil}), ShouldBeNil)

			rows, err := repo.FetchAll(ctx, "compresults", model.Row{"timestamp": nil})

			Convey("Then nil matches missing and null fields", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0].String("id"), ShouldEqual, "r1")
				So(rows[1].String("id"), ShouldEqual, "r3")
			})
		})

		Convey("When derived rows are replaced", func() {
			key := model.Row{"first_name": "Lena", "last_name": "Roth", "PisteYear": 2025}
			So(repo.Replace(ctx, "pisterefcompresults", key, model.Row{"refaverage": 80}), ShouldBeNil)
			So(repo.Replace(ctx, "pisterefcompresults", key, model.Row{"refaverage": 85}), ShouldBeNil)

			rows, _ := repo.FetchAll(ctx, "pisterefcompresults", key)

			Convey("Then exactly one row remains", func() {
				So(len(rows), ShouldEqual, 1)
				v, _ := rows[0].Float("refaverage")
				So(v, ShouldEqual, 85)
			})
		})

		Convey("When deleting", func() {
			So(repo.Upsert(ctx, "athletes", model.Row{"id": "x"}, model.Row{"club": "A"}), ShouldBeNil)
			So(repo.Upsert(ctx, "athletes", model.Row{"id": "y"}, model.Row{"club": "A"}), ShouldBeNil)
			n, err := repo.Delete(ctx, "athletes", model.Row{"club": "A"})

			Convey("Then the count is reported", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				rows, _ := repo.FetchAll(ctx, "athletes", nil)
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When inputs are invalid", func() {
			_, err := repo.Fetch(ctx, "bad table;", nil, repository.Page{Limit: 1})
			So(errors.Is(err, repository.ErrInvalidTable), ShouldBeTrue)
			_, err = repo.Fetch(ctx, "athletes", model.Row{"x'); drop": 1}, repository.Page{Limit: 1})
			So(errors.Is(err, repository.ErrInvalidColumn), ShouldBeTrue)
			_, err = repo.Fetch(ctx, "athletes", nil, repository.Page{Limit: 0})
			So(errors.Is(err, repository.ErrInvalidPage), ShouldBeTrue)
			So(errors.Is(repo.Upsert(ctx, "athletes", nil, model.Row{"a": 1}), repository.ErrEmptyKey), ShouldBeTrue)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	contract(t, "memory", func() repository.Store { return repository.NewMemoryStore() })

	Convey("Given a closed memory store", t, func() {
		s := repository.NewMemoryStore()
		So(s.Close(), ShouldBeNil)
		_, err := s.Fetch(context.Background(), "athletes", nil, repository.Page{Limit: 1})
		So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
	})

	Convey("Given fetched rows", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		So(s.Upsert(ctx, "athletes", model.Row{"id": "a"}, model.Row{"club": "A"}), ShouldBeNil)
		rows, _ := s.Fetch(ctx, "athletes", nil, repository.Page{Limit: 10})
		rows[0]["club"] = "mutated"

		Convey("Then mutating them does not touch the store", func() {
			again, _ := s.Fetch(ctx, "athletes", nil, repository.Page{Limit: 10})
			So(again[0].String("club"), ShouldEqual, "A")
			So(s.Count("athletes"), ShouldEqual, 1)
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	contract(t, "sqlite", func() repository.Store {
		s, err := repository.OpenSQL(context.Background(), repository.DriverSQLite, "file::memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return s
	})
}

func TestOpen(t *testing.T) {
	Convey("Given driver names", t, func() {
		s, err := repository.Open(context.Background(), "memory", "")
		So(err, ShouldBeNil)
		So(s, ShouldHaveSameTypeAs, &repository.MemoryStore{})
		_, err = repository.Open(context.Background(), "oracle", "")
		So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
	})
}
