package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tovu/retain/internal/adapters/http/api"
	"github.com/tovu/retain/internal/adapters/repository"
	"github.com/tovu/retain/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeStore struct {
	rows      []repository.RiskRow
	timeline  repository.Timeline
	lastLimit int
}

func (f *fakeStore) ListLatestRisks(_ context.Context, limit int) ([]repository.RiskRow, error) {
	f.lastLimit = limit
	return f.rows, nil
}

func (f *fakeStore) Timeline(_ context.Context, studentID string) (repository.Timeline, error) {
	if studentID == "missing" {
		return repository.Timeline{}, fmt.Errorf("%w: %s", repository.ErrNotFound, studentID)
	}
	return f.timeline, nil
}

func newTestServer(store *fakeStore) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(store, 100).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestAPI(t *testing.T) {
	Convey("Given the audit read API", t, func() {
		store := &fakeStore{
			rows: []repository.RiskRow{
				{StudentID: "S002", FullName: "Amina Diallo", AsOf: time.Now().UTC(), Score: 80, Tier: model.TierHigh},
			},
			timeline: repository.Timeline{
				Risks: []repository.RiskEntry{{Score: 80, Tier: model.TierHigh}},
			},
		}
		srv := newTestServer(store)
		defer srv.Close()

		Convey("When probing /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it reports ok", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When listing latest risks", func() {
			resp, err := http.Get(srv.URL + "/risks?limit=10")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the snapshot rows are returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var rows []repository.RiskRow
				So(json.NewDecoder(resp.Body).Decode(&rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].StudentID, ShouldEqual, "S002")
				So(store.lastLimit, ShouldEqual, 10)
			})
		})

		Convey("When the limit exceeds the configured cap", func() {
			resp, err := http.Get(srv.URL + "/risks?limit=5000")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is clamped to the cap", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(store.lastLimit, ShouldEqual, 100)
			})
		})

		Convey("When the limit is not a positive integer", func() {
			resp, err := http.Get(srv.URL + "/risks?limit=abc")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching a student timeline", func() {
			resp, err := http.Get(srv.URL + "/students/S002/timeline")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the timeline is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var tl repository.Timeline
				So(json.NewDecoder(resp.Body).Decode(&tl), ShouldBeNil)
				So(len(tl.Risks), ShouldEqual, 1)
			})
		})

		Convey("When fetching an unknown student timeline", func() {
			resp, err := http.Get(srv.URL + "/students/missing/timeline")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is a 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the timeline path is malformed", func() {
			resp, err := http.Get(srv.URL + "/students/S002")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}
