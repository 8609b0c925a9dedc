// -----------------------------------------------------------------------------
// querykit CLI
// -----------------------------------------------------------------------------
// Yer tutuculu bir SQL'i parametrelerle birleştirip yazdırır veya çalıştırır.
//
// Kullanım:
//
//	querykit [-config querykit.yaml] [-render] "<sql>" [param...]
//
// Parametreler sırayla ? yer tutucularına yerleşir ve şu kurala göre
// tiplenir: tamsayı → Int, "null" → NULL, "true"/"false" → Bool, diğer her
// şey → Str.
//
// Örnek:
//
//	querykit -render "SELECT * FROM users WHERE id = ? AND name = ?" 5 "O'Neil"
//	// SELECT * FROM users WHERE id = '5' AND name = 'O\'Neil'
//
// -render verilmezse ifade config'teki veritabanında çalıştırılır. Satır
// döndüren ifadeler tab ile ayrılmış değerler olarak, diğerleri etkilenen
// satır sayısı olarak yazdırılır. Log çıktısı stderr'e gider.
// -----------------------------------------------------------------------------

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/biyonik/querykit/internal/config"
	"github.com/biyonik/querykit/pkg/cache"
	"github.com/biyonik/querykit/pkg/database"
	"github.com/biyonik/querykit/pkg/events"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "querykit: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("querykit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config dosyası")
	render := fs.Bool("render", false, "çalıştırmadan birleştirilmiş SQL'i yazdır")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("sql argümanı gerekli")
	}

	query := fs.Arg(0)
	params := make([]database.Value, 0, fs.NArg()-1)
	for _, raw := range fs.Args()[1:] {
		params = append(params, parseParam(raw))
	}

	logger := log.New(stderr, "", log.LstdFlags)
	if n := database.Placeholders(query); n != len(params) {
		logger.Printf("⚠️  %d yer tutucu var, %d parametre verildi", n, len(params))
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return err
	}

	if *render {
		merged, err := database.New(nil, database.WithStrictMerge(cfg.Query.StrictMerge)).Merge(query, params...)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, merged)
		return err
	}

	store, err := cache.New(cache.Options{
		Driver: cfg.Cache.Driver,
		Prefix: cfg.Cache.Prefix,
		Dir:    cfg.Cache.FileDir,
		Redis:  &cfg.Redis,
	}, logger)
	if err != nil {
		return err
	}

	dispatcher, closeEvents := newQueryLog(cfg.Query, logger)
	defer closeEvents()

	conn, err := database.Open(ctx, cfg.Database.FormatDSN(),
		database.WithLogger(logger),
		database.WithDispatcher(dispatcher),
		database.WithDebug(cfg.Query.Debug),
		database.WithStrictMerge(cfg.Query.StrictMerge),
		database.WithRateLimit(cfg.Query.RateLimit, cfg.Query.RateBurst),
		database.WithCache(store, ""),
		database.WithPool(database.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}),
	)
	if err != nil {
		return err
	}
	defer conn.Close()

	merged, err := conn.Merge(query, params...)
	if err != nil {
		return err
	}

	if !returnsRows(merged) {
		affected, err := conn.Execute(ctx, merged)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "%d row(s) affected\n", affected)
		return err
	}

	var res *database.FetchedResult
	if store != nil && cfg.Cache.TTL > 0 {
		res, err = conn.Remember(ctx, cfg.Cache.TTL, merged)
	} else {
		res, err = conn.Fetch(ctx, merged)
	}
	if err != nil {
		return err
	}
	return writeTSV(stdout, res)
}

// newQueryLog, LogEvents açıksa sorgu event'lerini arka planda loglayan bir
// dispatcher kurar. Dönen fonksiyon kuyruğu boşaltıp dispatcher'ı kapatır.
func newQueryLog(cfg config.QueryConfig, logger *log.Logger) (database.EventDispatcher, func()) {
	if !cfg.LogEvents {
		return nil, func() {}
	}
	dispatcher := events.NewDispatcher(logger)
	async := events.NewAsyncListener(events.NewQueryLogListener(logger, cfg.SlowThreshold), logger, 256)
	dispatcher.Listen(events.Wildcard, async)
	return dispatcher, func() {
		async.Close()
		dispatcher.Shutdown()
	}
}

// parseParam, komut satırı argümanını bir Value'ya çevirir.
func parseParam(raw string) database.Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return database.Int(n)
	}
	switch strings.ToLower(raw) {
	case "null":
		return database.NullValue
	case "true":
		return database.Bool(true)
	case "false":
		return database.Bool(false)
	}
	return database.Str(raw)
}

// returnsRows, ifadenin satır döndüren bir ifade olup olmadığını tahmin eder.
func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(strings.TrimLeft(fields[0], "(")) {
	case "SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH":
		return true
	}
	return false
}

func writeTSV(w io.Writer, res *database.FetchedResult) error {
	if _, err := fmt.Fprintln(w, strings.Join(res.Columns(), "\t")); err != nil {
		return err
	}
	return res.Each(func(cells []any) error {
		out := make([]string, len(cells))
		for i, cell := range cells {
			if cell == nil {
				out[i] = "NULL"
				continue
			}
			out[i] = fmt.Sprint(cell)
		}
		_, err := fmt.Fprintln(w, strings.Join(out, "\t"))
		return err
	})
}
