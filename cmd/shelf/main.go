package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"bookshelf/internal/config"
	"bookshelf/internal/util"
	"bookshelf/pkg/blob"
	"bookshelf/pkg/books"
	"bookshelf/pkg/docstore"
	"bookshelf/pkg/domain"
	"bookshelf/pkg/identity"
	"bookshelf/pkg/presenter"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config file")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	sessions, provider, err := buildIdentity(cfg)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	if args[0] == "login" {
		if len(args) != 2 {
			usage()
		}
		token, err := sessions.NewSession(args[1])
		if err != nil {
			log.Fatalf("failed to create session: %v", err)
		}
		fmt.Println(token)
		return
	}

	repo, err := buildRepository(cfg, provider, logger)
	if err != nil {
		log.Fatalf("failed to init repository: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "save":
		if len(args) != 2 {
			usage()
		}
		runSave(ctx, repo, args[1])
	case "list":
		runList(ctx, repo)
	case "watch":
		if len(args) != 2 {
			usage()
		}
		runWatch(ctx, repo, logger, args[1])
	case "remove":
		if len(args) != 2 {
			usage()
		}
		runRemove(ctx, repo, args[1])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: shelf [-config path] <command>

commands:
  login <userID>     create a session token for a user
  save <book.json>   save a book (uploads a pending file:// cover)
  list               print the current user's books
  watch <bookID>     follow a single book's live view state
  remove <bookID>    remove a book and its cover`)
	os.Exit(2)
}

func buildIdentity(cfg config.FileConfig) (identity.SessionStore, *identity.SessionProvider, error) {
	ttl, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	var sessions identity.SessionStore
	if cfg.RedisAddr != "" {
		sessions = identity.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, ttl)
	} else {
		sessions = identity.NewJWTSessionStore(cfg.SessionSecret, ttl)
	}
	provider := identity.NewSessionProvider(sessions)
	provider.SetToken(cfg.SessionToken)
	return sessions, provider, nil
}

func buildRepository(cfg config.FileConfig, provider identity.Provider, logger *slog.Logger) (*books.Repository, error) {
	var notifier docstore.Notifier
	if cfg.AMQPURL != "" {
		n, err := docstore.NewAMQPNotifier(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		notifier = n
	} else {
		notifier = docstore.NewRedisNotifier(cfg.RedisAddr, cfg.RedisPassword)
	}

	docs, err := docstore.NewGormStore(cfg.PostgresDSN, notifier, logger)
	if err != nil {
		return nil, err
	}

	var blobs blob.Store
	if cfg.MinioEndpoint != "" {
		expiry, err := config.ParseMinioURLExpiry(cfg.MinioURLExpiry)
		if err != nil {
			return nil, err
		}
		blobs, err = blob.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, expiry)
		if err != nil {
			return nil, err
		}
	} else {
		blobs, err = blob.NewFSStore(cfg.BlobDir, cfg.BlobBaseURL)
		if err != nil {
			return nil, err
		}
	}

	repo := books.NewRepository(docs, blobs, provider, logger)
	if cfg.CoverQuality > 0 || cfg.CoverMaxDim > 0 {
		repo.SetCoverProcessor(coverProcessor(cfg))
	}
	return repo, nil
}

func coverProcessor(cfg config.FileConfig) *books.CoverProcessor {
	p := books.NewCoverProcessor()
	if cfg.CoverQuality > 0 {
		p.Quality = cfg.CoverQuality
	}
	if cfg.CoverMaxDim > 0 {
		p.MaxDim = uint(cfg.CoverMaxDim)
	}
	return p
}

func runSave(ctx context.Context, repo *books.Repository, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read book file: %v", err)
	}
	var book domain.Book
	if err := json.Unmarshal(data, &book); err != nil {
		log.Fatalf("failed to parse book file: %v", err)
	}
	if err := repo.Save(ctx, &book); err != nil {
		log.Fatalf("failed to save book: %v", err)
	}
	fmt.Println(book.ID)
}

func runList(ctx context.Context, repo *books.Repository) {
	sub := repo.LoadBooks(ctx)
	defer sub.Cancel()
	select {
	case list, ok := <-sub.C():
		if !ok {
			log.Fatalf("failed to list books: %v", sub.Err())
		}
		for _, b := range list {
			fmt.Printf("%s\t%s\t%s\t%d\n", b.ID, b.Title, b.Author, b.Year)
		}
	case <-ctx.Done():
	}
}

func runWatch(ctx context.Context, repo *books.Repository, logger *slog.Logger, id string) {
	pres := presenter.NewBookDetailsPresenter(repo, logger)
	pres.LoadBook(ctx, id)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case state, ok := <-pres.Updates():
				if !ok {
					return nil
				}
				printState(state)
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		pres.Close()
		return nil
	})
	_ = g.Wait()
}

func printState(state presenter.ViewState) {
	switch state.Status {
	case presenter.StatusSuccess:
		fmt.Printf("%s\t%s\t%s (%s)\n", state.Book.ID, state.Book.Title, state.Book.Author, state.Book.MediaLabel)
	case presenter.StatusError:
		fmt.Printf("error: %v\n", state.Err)
	default:
		fmt.Println("loading...")
	}
}

func runRemove(ctx context.Context, repo *books.Repository, id string) {
	sub := repo.LoadBook(ctx, id)
	var book *domain.Book
	select {
	case b, ok := <-sub.C():
		if !ok {
			log.Fatalf("failed to load book: %v", sub.Err())
		}
		book = b
	case <-ctx.Done():
		sub.Cancel()
		return
	}
	sub.Cancel()
	if book == nil {
		log.Fatalf("book %s not found", id)
	}
	if err := repo.Remove(ctx, *book); err != nil {
		log.Fatalf("failed to remove book: %v", err)
	}
}
