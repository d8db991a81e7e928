package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/olivere/elastic/v7"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"restaurant_map/internal/models"
)

const nearbyHit = `{"_index":"restaurants","_id":"a1","_score":null,"sort":[12.5],"_source":{
  "name":"A","cuisine":"Pizza",
  "address":{"coord":{"type":"Point","coordinates":[-73.99,40.73]}},
  "grades":[{"grade":"A","score":5}],
  "location":{"lat":40.73,"lon":-73.99}}}`

// fakeSearch answers every _search with one hit and the given total.
func fakeSearch(t *testing.T, total int) (*Elastic, func() map[string]interface{}) {
	t.Helper()
	var (
		mu   sync.Mutex
		body map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/restaurants/_search" {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		json.Unmarshal(raw, &body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"took":1,"timed_out":false,"hits":{"total":{"value":%d,"relation":"eq"},"hits":[%s]}}`, total, nearbyHit)
	}))
	t.Cleanup(srv.Close)

	client, err := elastic.NewClient(
		elastic.SetURL(srv.URL),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewElastic(client, "restaurants"), func() map[string]interface{} {
		mu.Lock()
		defer mu.Unlock()
		return body
	}
}

func TestElasticNearbyWarnsWhenTruncated(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(func() { logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks)) })

	cases := []struct {
		name     string
		total    int
		wantWarn bool
	}{
		{"complete", 1, false},
		{"truncated", maxSearchHits + 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hook.Reset()
			e, body := fakeSearch(t, tc.total)

			got, err := e.Nearby(context.Background(), models.LngLat{Lng: -73.99, Lat: 40.73}, 400)
			if err != nil {
				t.Fatalf("Nearby: %v", err)
			}
			if len(got) != 1 || got[0].ID != "a1" || got[0].Name != "A" || got[0].Dist.Calculated != 12.5 {
				t.Errorf("Nearby = %+v", got)
			}
			if sent := body(); sent["track_total_hits"] != true {
				t.Errorf("request did not ask for exact totals: %v", sent)
			}

			warned := false
			for _, entry := range hook.AllEntries() {
				if entry.Level == logrus.WarnLevel && entry.Message == "nearby search truncated to the result window" {
					warned = true
					if entry.Data["total"] != int64(tc.total) || entry.Data["returned"] != 1 {
						t.Errorf("warning fields = %v", entry.Data)
					}
				}
			}
			if warned != tc.wantWarn {
				t.Errorf("truncation warning = %v, want %v", warned, tc.wantWarn)
			}
		})
	}
}
