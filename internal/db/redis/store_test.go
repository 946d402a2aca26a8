package redis

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/nobelidx/internal/db"
	"github.com/kailas-cloud/nobelidx/internal/domain/search/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForReady_RetriesUntilPong(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
			Return(mock.ErrorResult(errors.New("LOADING dataset in memory"))),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
			Return(mock.Result(mock.RedisString("PONG"))),
	)

	s := NewStoreForTest(c)
	if err := s.WaitForReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_TimeoutReportsLastError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	refused := errors.New("connection refused")
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(refused)).MinTimes(1)

	s := NewStoreForTest(c)
	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, refused) {
		t.Fatalf("expected last ping error, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Errorf("expected PING op error, got %v", err)
	}
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- modules.go tests ---

func moduleEntry(name string) rueidis.RedisMessage {
	return mock.RedisArray(
		mock.RedisString("name"), mock.RedisString(name),
		mock.RedisString("ver"), mock.RedisInt64(80000),
	)
}

func TestRequireModules(t *testing.T) {
	tests := []struct {
		name    string
		reply   rueidis.RedisMessage
		wantErr error
	}{
		{"all loaded", mock.RedisArray(moduleEntry("search"), moduleEntry("ReJSON")), nil},
		{"json missing", mock.RedisArray(moduleEntry("search")), db.ErrModuleMissing},
		{"none", mock.RedisArray(), db.ErrModuleMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)
			c.EXPECT().
				Do(gomock.Any(), mock.Match("MODULE", "LIST")).
				Return(mock.Result(tt.reply))

			s := NewStoreForTest(c)
			err := s.RequireModules(context.Background(), ModuleSearch, ModuleJSON)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !strings.Contains(err.Error(), ModuleJSON) {
				t.Errorf("error should name the missing module: %v", err)
			}
		})
	}
}

func TestRequireModules_CommandError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("MODULE", "LIST")).
		Return(mock.Result(mock.RedisError("ERR unknown command")))

	s := NewStoreForTest(c)
	var dbErr *db.Error
	if err := s.RequireModules(context.Background(), ModuleSearch); !errors.As(err, &dbErr) || dbErr.Op != db.OpModuleList {
		t.Fatalf("expected MODULE LIST error, got %v", err)
	}
}

// --- hash.go tests ---

func TestHSet_SortedFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HSET", "nobel:laureate:2018:physics:1",
			"category", "physics", "year", "2018")).
		Return(mock.Result(mock.RedisInt64(2)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "nobel:laureate:2018:physics:1", map[string]string{
		"year":     "2018",
		"category": "physics",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "k", map[string]string{"f": "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "k")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"firstname": mock.RedisString("Arthur"),
			"surname":   mock.RedisString("Ashkin"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["firstname"] != "Arthur" || m["surname"] != "Ashkin" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "k")).
		Return(mock.Result(mock.RedisArray()))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "k")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

// --- keys.go tests ---

func TestScanPrefix_EscapesGlob(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", `n\*\[1\]:prize:*`, "COUNT", "100")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(mock.RedisString("n*[1]:prize:2018:physics:1")),
		)))

	s := NewStoreForTest(c)
	keys, err := s.ScanPrefix(context.Background(), "n*[1]:prize:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "n*[1]:prize:2018:physics:1" {
		t.Errorf("keys = %v", keys)
	}
}

func TestScanPrefix_MultiPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", "nobel:laureate:*", "COUNT", "100")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisInt64(42),
				mock.RedisArray(mock.RedisString("nobel:laureate:2018:physics:1")),
			))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "42", "MATCH", "nobel:laureate:*", "COUNT", "100")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisInt64(0),
				mock.RedisArray(mock.RedisString("nobel:laureate:2018:physics:2")),
			))),
	)

	s := NewStoreForTest(c)
	keys, err := s.ScanPrefix(context.Background(), "nobel:laureate:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}

func TestScanPrefix_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.ScanPrefix(context.Background(), "nobel:")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpScan {
		t.Fatalf("expected SCAN op error, got %v", err)
	}
}

func TestDel_Batches(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	keys := make([]string, delBatch+2)
	for i := range keys {
		keys[i] = "k" + strconv.Itoa(i)
	}
	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match(append([]string{"DEL"}, keys[:delBatch]...)...)).
			Return(mock.Result(mock.RedisInt64(delBatch))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("DEL", keys[delBatch], keys[delBatch+1])).
			Return(mock.Result(mock.RedisInt64(1))),
	)

	s := NewStoreForTest(c)
	n, err := s.Del(context.Background(), keys...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != delBatch+1 {
		t.Errorf("deleted = %d, want %d", n, delBatch+1)
	}
}

func TestDel_NoKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	n, err := s.Del(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("got %d, %v", n, err)
	}
}

func TestDel_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "k")).
		Return(mock.Result(mock.RedisError("READONLY You can't write against a read only replica.")))

	s := NewStoreForTest(c)
	_, err := s.Del(context.Background(), "k")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpDel {
		t.Fatalf("expected DEL op error, got %v", err)
	}
}

// --- json.go tests ---

func TestJSONSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.SET", "nobel:prize:2018:physics:1", "$", `{"year":2018}`)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	err := s.JSONSet(context.Background(), "nobel:prize:2018:physics:1", "$", []byte(`{"year":2018}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSet_DefaultPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.SET", "k", "$", `{}`)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.JSONSet(context.Background(), "k", "", []byte(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.SET"
		})).
		Return(mock.Result(mock.RedisError("ERR new objects must be created at the root")))

	s := NewStoreForTest(c)
	err := s.JSONSet(context.Background(), "k", "$.x", []byte(`1`))
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestJSONGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.GET", "k")).
		Return(mock.Result(mock.RedisString(`{"year":2018}`)))

	s := NewStoreForTest(c)
	data, err := s.JSONGet(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"year":2018}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestJSONGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.GET", "k")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.JSONGet(context.Background(), "k")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestJSONGet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.GET", "k")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.JSONGet(context.Background(), "k")
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

// --- index.go tests ---

func prizeIndexForTest() *db.IndexDefinition {
	return db.NewIndex("nobel:prize:idx").
		OnJSON().
		Prefix("nobel:prize:").
		Numeric("$.year").As("year").Sortable().
		Tag("$.category").As("category").
		Text("$.searchableNames").As("searchableNames").Weight(2).
		MustBuild()
}

func TestCreateIndex_Args(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.CREATE", "nobel:prize:idx", "ON", "JSON",
			"PREFIX", "1", "nobel:prize:",
			"SCHEMA",
			"$.year", "AS", "year", "NUMERIC", "SORTABLE",
			"$.category", "AS", "category", "TAG",
			"$.searchableNames", "AS", "searchableNames", "TEXT", "WEIGHT", "2",
		)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.CreateIndex(context.Background(), prizeIndexForTest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), prizeIndexForTest())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("ERR unknown command 'FT.CREATE'")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), prizeIndexForTest())
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{Name: "idx"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err := s.CreateIndex(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil definition")
	}
}

func TestDropIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "idx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	err := s.DropIndex(context.Background(), "idx")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		name    string
		reply   rueidis.RedisMessage
		want    bool
		wantErr bool
	}{
		{"present", mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("idx")), true, false},
		{"absent", mock.RedisError("Unknown index name"), false, false},
		{"failure", mock.RedisError("ERR something else"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)
			c.EXPECT().
				Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
				Return(mock.Result(tt.reply))

			s := NewStoreForTest(c)
			got, err := s.IndexExists(context.Background(), "idx")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IndexExists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFieldArgs_Vector(t *testing.T) {
	f := &db.IndexField{
		Name:           "embedding",
		Type:           db.IndexFieldVector,
		VectorAlgo:     db.VectorFlat,
		VectorDim:      128,
		VectorDistance: db.DistanceCosine,
	}
	args, err := buildFieldArgs(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"embedding", "VECTOR", "FLAT", "6",
		"TYPE", "FLOAT32", "DIM", "128", "DISTANCE_METRIC", "COSINE"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildFieldArgs_FlatBlockSize(t *testing.T) {
	f := &db.IndexField{Name: "v", Type: db.IndexFieldVector, VectorDim: 4, VectorBlockSize: 512}
	args, err := buildFieldArgs(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"v", "VECTOR", "FLAT", "8",
		"TYPE", "FLOAT32", "DIM", "4", "DISTANCE_METRIC", "COSINE", "BLOCK_SIZE", "512"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildFieldArgs_TagOptions(t *testing.T) {
	f := &db.IndexField{Name: "share", Type: db.IndexFieldTag, TagSeparator: ";", TagCaseSensitive: true}
	args, err := buildFieldArgs(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"share", "TAG", "SEPARATOR", ";", "CASESENSITIVE"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildFieldArgs_UnknownType(t *testing.T) {
	if _, err := buildFieldArgs(&db.IndexField{Name: "x", Type: db.IndexFieldType(99)}); err == nil {
		t.Fatal("expected error for unknown field type")
	}
}

// --- search.go tests ---

func mustExpr(t *testing.T, conds ...filter.Condition) filter.Expression {
	t.Helper()
	expr, err := filter.All(conds...)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	return expr
}

func TestSearch_TagWithReturn(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "nobel:prize:idx", "@category:{physics}",
			"RETURN", "1", "$", "LIMIT", "0", "1000", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("nobel:prize:2018:physics:1"),
			mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"year":2018}`)),
		)))

	cat, _ := filter.NewMatch("category", "physics")
	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.Query{
		IndexName:    "nobel:prize:idx",
		Filters:      mustExpr(t, cat),
		Limit:        1000,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entries[0].Fields["$"] != `{"year":2018}` {
		t.Errorf("unexpected fields: %v", res.Entries[0].Fields)
	}
}

func TestSearch_NoContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "@firstname:{Arthur} @surname:{Ashkin}",
			"NOCONTENT", "LIMIT", "0", "10", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("k1"),
			mock.RedisString("k2"),
		)))

	fn, _ := filter.NewMatch("firstname", "Arthur")
	sn, _ := filter.NewMatch("surname", "Ashkin")
	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.Query{
		IndexName:    "idx",
		Filters:      mustExpr(t, fn, sn),
		Limit:        10,
		NoContent:    true,
		ReturnFields: []string{"ignored"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entries[1].Key != "k2" || res.Entries[1].Fields != nil {
		t.Errorf("unexpected entry: %+v", res.Entries[1])
	}
}

func TestSearch_MatchAllSorted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "*",
			"SORTBY", "year", "ASC", "LIMIT", "5", "5", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.Query{
		IndexName: "idx", Offset: 5, Limit: 5, SortBy: "year",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearch_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("idx: no such index")))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.Query{IndexName: "idx", Limit: 1})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := NewStoreForTest(mock.NewClient(gomock.NewController(t)))
	if _, err := s.Search(context.Background(), &db.Query{}); err == nil {
		t.Error("expected error for missing index")
	}
	if _, err := s.Search(context.Background(), &db.Query{IndexName: "idx", Limit: -1}); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" &&
				cmd[1] == "idx" &&
				cmd[2] == "*=>[KNN 3 @embedding $BLOB]" &&
				slices.Contains(cmd, "__embedding_score") &&
				slices.Contains(cmd, "BLOB") &&
				cmd[len(cmd)-1] == "2"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("nobel:laureate:2018:physics:1"),
			mock.RedisArray(
				mock.RedisString("firstname"),
				mock.RedisString("Arthur"),
				mock.RedisString("__embedding_score"),
				mock.RedisString("0.1"), // distance 0.1 -> similarity 0.9
			),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "idx",
		VectorField:  "embedding",
		Vector:       []float32{0.1, 0.2},
		K:            3,
		ReturnFields: []string{"firstname"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Score < 0.89 || e.Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", e.Score)
	}
	if _, ok := e.Fields["__embedding_score"]; ok {
		t.Error("score field should be removed from fields")
	}
	if e.Fields["firstname"] != "Arthur" {
		t.Errorf("unexpected fields: %v", e.Fields)
	}
}

func TestSearchKNN_WithFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "(@category:{physics})=>[KNN 5 @embedding $BLOB]"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	cat, _ := filter.NewMatch("category", "physics")
	s := NewStoreForTest(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx", VectorField: "embedding", Vector: []float32{1}, K: 5,
		Filters: mustExpr(t, cat),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := NewStoreForTest(mock.NewClient(gomock.NewController(t)))
	tests := []struct {
		name string
		q    db.KNNQuery
	}{
		{"no index", db.KNNQuery{VectorField: "v", Vector: []float32{1}, K: 1}},
		{"no field", db.KNNQuery{IndexName: "i", Vector: []float32{1}, K: 1}},
		{"no vector", db.KNNQuery{IndexName: "i", VectorField: "v", K: 1}},
		{"zero k", db.KNNQuery{IndexName: "i", VectorField: "v", Vector: []float32{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.SearchKNN(context.Background(), &tt.q); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// --- filter building ---

func TestBuildFilter(t *testing.T) {
	physics, _ := filter.NewMatch("category", "physics")
	years, _ := filter.NewBetween("year", 2015, 2018)
	kw, _ := filter.NewText("motivation", "quantum")
	fn, _ := filter.NewMatch("firstname", "Marie")
	sn, _ := filter.NewMatch("surname", "Curie")

	tests := []struct {
		name string
		expr filter.Expression
		want string
	}{
		{"empty", filter.Expression{}, ""},
		{"tag and range", mustExpr(t, physics, years), "@category:{physics} @year:[2015 2018]"},
		{"text", mustExpr(t, kw), "@motivation:(quantum)"},
		{"two tags", mustExpr(t, fn, sn), "@firstname:{Marie} @surname:{Curie}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildFilter(tt.expr); got != tt.want {
				t.Errorf("buildFilter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildNumericFilter_SingleYear(t *testing.T) {
	if got := buildNumericFilter("year", filter.Range{Min: 2018, Max: 2018}); got != "@year:[2018 2018]" {
		t.Errorf("got %q", got)
	}
}

func TestBuildTagFilter_Escapes(t *testing.T) {
	if got := buildTagFilter("surname", "de Gennes-Smith"); got != `@surname:{de\ Gennes\-Smith}` {
		t.Errorf("got %q", got)
	}
}

func TestEscapeQuery(t *testing.T) {
	if got := escapeQuery("(quantum) @dots"); got != `\(quantum\) \@dots` {
		t.Errorf("got %q", got)
	}
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
