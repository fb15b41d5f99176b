package main

import (
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"

	"bookshelf/internal/bookshelf"
	"bookshelf/internal/clients"
)

func booksCommand() *cli.Command {
	return &cli.Command{
		Name:  "books",
		Usage: "Manage books on a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "Base `URL` of the bookshelf server",
				Value:   "http://localhost:9000",
				EnvVars: []string{"BOOKSHELF_SERVER"},
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a book",
				Flags:  bookInputFlags(),
				Action: addBook,
			},
			{
				Name:  "list",
				Usage: "List books",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Case-insensitive name substring"},
					&cli.StringFlag{Name: "reading", Usage: "Reading flag (0 or 1)"},
					&cli.StringFlag{Name: "finished", Usage: "Finished flag (0 or 1)"},
				},
				Action: listBooks,
			},
			{
				Name:      "get",
				Usage:     "Show a book",
				ArgsUsage: "ID",
				Action:    getBook,
			},
			{
				Name:      "update",
				Usage:     "Replace the fields of a book",
				ArgsUsage: "ID",
				Flags:     bookInputFlags(),
				Action:    updateBook,
			},
			{
				Name:      "delete",
				Usage:     "Delete a book",
				ArgsUsage: "ID",
				Action:    deleteBook,
			},
		},
	}
}

func bookInputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.IntFlag{Name: "year"},
		&cli.StringFlag{Name: "author"},
		&cli.StringFlag{Name: "summary"},
		&cli.StringFlag{Name: "publisher"},
		&cli.IntFlag{Name: "page-count"},
		&cli.IntFlag{Name: "read-page"},
		&cli.BoolFlag{Name: "reading"},
	}
}

func inputFromFlags(c *cli.Context) bookshelf.BookInput {
	name := c.String("name")
	return bookshelf.BookInput{
		Name:      &name,
		Year:      c.Int("year"),
		Author:    c.String("author"),
		Summary:   c.String("summary"),
		Publisher: c.String("publisher"),
		PageCount: c.Int("page-count"),
		ReadPage:  c.Int("read-page"),
		Reading:   c.Bool("reading"),
	}
}

func clientFrom(c *cli.Context) *clients.BookshelfClient {
	return clients.NewBookshelfClient(c.String("server"))
}

func bookID(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("expected exactly one book ID", 2)
	}
	return c.Args().First(), nil
}

func printJSON(c *cli.Context, v interface{}) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(append(out, '\n'))
	return err
}

func addBook(c *cli.Context) error {
	id, err := clientFrom(c).AddBook(c.Context, inputFromFlags(c))
	if err != nil {
		return err
	}
	return printJSON(c, map[string]string{"bookId": id})
}

func listBooks(c *cli.Context) error {
	query := url.Values{}
	for _, key := range []string{"name", "reading", "finished"} {
		if c.IsSet(key) {
			query.Set(key, c.String(key))
		}
	}

	books, err := clientFrom(c).ListBooks(c.Context, query)
	if err != nil {
		return err
	}
	return printJSON(c, books)
}

func getBook(c *cli.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	book, err := clientFrom(c).GetBook(c.Context, id)
	if err != nil {
		return err
	}
	return printJSON(c, book)
}

func updateBook(c *cli.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	msg, err := clientFrom(c).UpdateBook(c.Context, id, inputFromFlags(c))
	if err != nil {
		return err
	}
	return printJSON(c, map[string]string{"message": msg})
}

func deleteBook(c *cli.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	msg, err := clientFrom(c).DeleteBook(c.Context, id)
	if err != nil {
		return err
	}
	return printJSON(c, map[string]string{"message": msg})
}
