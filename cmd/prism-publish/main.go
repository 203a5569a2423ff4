package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prism-press/prism/internal/app"
	"github.com/prism-press/prism/internal/articles"
	"github.com/prism-press/prism/internal/config"
	"github.com/prism-press/prism/internal/logger"
)

// prism-publish pins an article and submits a single createArticle
// transaction, printing each lifecycle phase. With -mint it instead mints
// the given token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "prism-publish failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		title       = flag.String("title", "", "article title")
		contentFile = flag.String("content", "", "path to the article body file")
		imageFile   = flag.String("image", "", "optional path to a background image")
		mintPrice   = flag.String("mint-price", "0", "mint price in wei")
		tags        = flag.String("tags", "", "comma-separated tags")
		mintToken   = flag.Uint64("mint", 0, "mint the given token instead of creating an article")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	observe := func(phase articles.TxPhase) {
		fmt.Printf("tx %s\n", phase)
	}

	if *mintToken != 0 {
		result, err := application.Writer().MintArticle(ctx, *mintToken, observe)
		if err != nil {
			return err
		}
		fmt.Printf("minted token %d: tx %s in block %d\n", *mintToken, result.TxHash, result.BlockNumber)
		return nil
	}

	if *title == "" || *contentFile == "" {
		flag.Usage()
		return fmt.Errorf("-title and -content are required")
	}

	body, err := os.ReadFile(*contentFile)
	if err != nil {
		return fmt.Errorf("read content file: %w", err)
	}

	price, ok := new(big.Int).SetString(*mintPrice, 10)
	if !ok {
		return fmt.Errorf("invalid -mint-price %q", *mintPrice)
	}

	req := articles.CreateRequest{
		Title:     *title,
		Content:   string(body),
		MintPrice: price,
	}
	if *tags != "" {
		for _, tag := range strings.Split(*tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}
	if *imageFile != "" {
		image, err := os.ReadFile(*imageFile)
		if err != nil {
			return fmt.Errorf("read image file: %w", err)
		}
		req.Image = image
		req.ImageName = filepath.Base(*imageFile)
	}

	result, err := application.Writer().CreateArticle(ctx, req, observe)
	if err != nil {
		return err
	}
	fmt.Printf("published %q: content %s, tx %s in block %d\n", *title, result.ContentRef, result.TxHash, result.BlockNumber)
	return nil
}
