package registry_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opticshield/opticshield/internal/flags"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/registry"
	"github.com/opticshield/opticshield/internal/testutil"
)

func TestHTTPClient_CreateThenList(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)
	client := registry.NewHTTPClient(fake.URL())
	ctx := context.Background()

	created, err := client.Create(ctx, registry.CreateRequest{
		Name:           "Alice",
		PersonID:       "A1",
		Classification: person.Watchlist,
		Metadata:       "front desk",
		Image:          testutil.TinyPNG,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Alice", created.Name)
	require.Equal(t, person.Watchlist, created.Classification)
	require.Equal(t, "front desk", created.MetadataText())
	require.Equal(t, testutil.TinyPNG, created.Image)

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []person.Person{created}, list)

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, http.MethodPost, reqs[0].Method)
	require.Equal(t, "/api/persons", reqs[0].Path)
	require.Equal(t, map[string]any{
		"name":     "Alice",
		"flag":     "watchlist",
		"metadata": "front desk",
		"image":    testutil.TinyPNG,
	}, reqs[0].Body, "personId is not sent by default")
}

func TestHTTPClient_CreateSendsPersonIDWithFlag(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)
	client := registry.NewHTTPClient(fake.URL(),
		registry.WithFlags(flags.New(map[string]bool{flags.FlagSendPersonID: true})))

	_, err := client.Create(context.Background(), registry.CreateRequest{
		Name: "Bob", PersonID: "B7", Classification: person.Whitelist,
	})
	require.NoError(t, err)
	require.Equal(t, "B7", fake.Requests()[0].Body["personId"])
	require.Equal(t, "", fake.Requests()[0].Body["image"], "absent image is sent as empty string")
}

func TestHTTPClient_CreateFailure(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)
	client := registry.NewHTTPClient(fake.URL())

	_, err := client.Create(context.Background(), registry.CreateRequest{Name: "", Classification: person.Whitelist})

	var reqErr *registry.RequestError
	require.True(t, errors.As(err, &reqErr))
	require.Equal(t, "create", reqErr.Op)
	require.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	require.Equal(t, "name is required", reqErr.Message)
	require.ErrorIs(t, err, registry.ErrStatus)
	require.Equal(t, "Failed to add person: name is required", registry.UserMessage(err, "Failed to add person"))
	require.Empty(t, fake.Records())
}

func TestHTTPClient_ListEmptyShapes(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		t.Run(body, func(t *testing.T) {
			fake := testutil.NewFakeRegistry(t).ServeListBody(body)
			list, err := registry.NewHTTPClient(fake.URL()).List(context.Background())
			require.NoError(t, err)
			require.NotNil(t, list)
			require.Empty(t, list)
		})
	}
}

func TestHTTPClient_ListDecoding(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).ServeListBody(`[
		{"_id":"m1","id":"ignored","name":"A","flag":"blacklist","metadata":""},
		{"id":"p2","name":"B"},
		{"_id":"m3","name":"C","flag":"watchlist","metadata":"vip","image":"data:image/png;base64,AA=="}
	]`)

	list, err := registry.NewHTTPClient(fake.URL()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.Equal(t, "m1", list[0].ID, "_id wins over id")
	require.NotNil(t, list[0].Metadata)
	require.Equal(t, "", *list[0].Metadata)

	require.Equal(t, "p2", list[1].ID)
	require.Equal(t, person.Whitelist, list[1].Classification, "missing flag decodes as whitelist")
	require.Nil(t, list[1].Metadata)

	require.Equal(t, "vip", list[2].MetadataText())
	require.True(t, list[2].HasImage())
}

func TestHTTPClient_ListNumericIDs(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).ServeListBody(`[
		{"_id":"65a1","id":7,"name":"Alice","flag":"whitelist"},
		{"id":12,"name":"Bob"},
		{"_id":"65a3","id":null,"name":"Carol"}
	]`)

	list, err := registry.NewHTTPClient(fake.URL()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.Equal(t, "65a1", list[0].ID, "_id keys actions")
	require.Equal(t, "7", list[0].DisplayID)
	require.Equal(t, "7", list[0].ShownID())

	require.Equal(t, "12", list[1].ID)
	require.Empty(t, list[1].DisplayID)

	require.Equal(t, "65a3", list[2].ID)
	require.Equal(t, "65a3", list[2].ShownID())
}

func TestHTTPClient_ListFailures(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*testutil.FakeRegistry)
		wantStatus int
		wantErr    error
	}{
		{"server error", func(f *testutil.FakeRegistry) { f.FailNext(http.MethodGet, 500) }, 500, registry.ErrStatus},
		{"not json", func(f *testutil.FakeRegistry) { f.ServeListBody("<html>") }, 200, registry.ErrDecode},
		{"object not array", func(f *testutil.FakeRegistry) { f.ServeListBody(`{"persons":[]}`) }, 200, registry.ErrDecode},
		{"unknown flag", func(f *testutil.FakeRegistry) { f.ServeListBody(`[{"_id":"1","name":"X","flag":"greylist"}]`) }, 0, registry.ErrDecode},
		{"object id", func(f *testutil.FakeRegistry) { f.ServeListBody(`[{"id":{"$oid":"1"},"name":"X"}]`) }, 0, registry.ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeRegistry(t)
			tt.setup(fake)

			list, err := registry.NewHTTPClient(fake.URL()).List(context.Background())
			require.Nil(t, list)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantStatus, registry.StatusCode(err))
		})
	}
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := registry.NewHTTPClient(url).List(context.Background())
	var reqErr *registry.RequestError
	require.True(t, errors.As(err, &reqErr))
	require.Equal(t, 0, reqErr.StatusCode)
	require.Equal(t, http.MethodGet, reqErr.Method)
	require.Contains(t, err.Error(), "registry list: GET "+url+"/api/persons")
}

func TestHTTPClient_UpdateAndRemove(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).Seed(
		testutil.NewPerson("p1", "Alice"),
		testutil.NewPerson("p2", "Bob", testutil.WithClassification(person.Blacklist)),
	)
	client := registry.NewHTTPClient(fake.URL())
	ctx := context.Background()

	require.NoError(t, client.UpdateClassification(ctx, "p1", person.Blacklist))
	require.Equal(t, person.Blacklist, fake.Records()[0].Classification)

	require.NoError(t, client.Remove(ctx, "p2"))
	records := fake.Records()
	require.Len(t, records, 1)
	require.Equal(t, "p1", records[0].ID)

	reqs := fake.Requests()
	require.Equal(t, "/api/persons/p1", reqs[0].Path)
	require.Equal(t, map[string]any{"flag": "blacklist"}, reqs[0].Body)
	require.Equal(t, http.MethodDelete, reqs[1].Method)
}

func TestHTTPClient_NotFound(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)
	client := registry.NewHTTPClient(fake.URL())

	err := client.Remove(context.Background(), "ghost")
	require.True(t, registry.IsNotFound(err))

	err = client.UpdateClassification(context.Background(), "ghost", person.Watchlist)
	require.True(t, registry.IsNotFound(err))
	require.False(t, registry.IsNotFound(errors.New("plain")))
}

func TestHTTPClient_EscapesIDs(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).Seed(testutil.NewPerson("a/b c", "Odd"))
	client := registry.NewHTTPClient(fake.URL())

	require.NoError(t, client.Remove(context.Background(), "a/b c"))
	require.Empty(t, fake.Records())
}

func TestHTTPClient_SetBaseURL(t *testing.T) {
	first := testutil.NewFakeRegistry(t).Seed(testutil.NewPerson("1", "First"))
	second := testutil.NewFakeRegistry(t).Seed(testutil.NewPerson("2", "Second"))

	client := registry.NewHTTPClient(first.URL() + "/")
	require.Equal(t, first.URL(), client.BaseURL())

	client.SetBaseURL(second.URL())
	list, err := client.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Second", list[0].Name)
	require.Zero(t, first.Count(http.MethodGet))
}

func TestHTTPClient_PlainIDs(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).UsePlainIDs().Seed(testutil.NewPerson("x1", "Plain"))
	list, err := registry.NewHTTPClient(fake.URL()).List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "x1", list[0].ID)
}

func TestRequestFromDraft(t *testing.T) {
	d := person.NewDraft()
	d.Name, d.PersonID, d.Metadata, d.Image, d.ImagePath = "N", "P", "M", "I", "/tmp/x.png"
	require.Equal(t, registry.CreateRequest{
		Name: "N", PersonID: "P", Classification: person.Whitelist, Metadata: "M", Image: "I",
	}, registry.RequestFromDraft(d))
}
