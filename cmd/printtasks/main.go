// Command printtasks dumps every stored task to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-core-api/internal/config"
	"github.com/BuzzLyutic/task-core-api/internal/model"
	"github.com/BuzzLyutic/task-core-api/internal/repo"
	"github.com/BuzzLyutic/task-core-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	tasks, err := service.NewTaskService(repo.NewTaskRepo(pool), nil).List(ctx)
	if err != nil {
		log.Fatalf("list tasks: %v", err)
	}

	if err := printTasks(os.Stdout, tasks); err != nil {
		log.Fatalf("print tasks: %v", err)
	}
}

func printTasks(out io.Writer, tasks []model.Task) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCREATED\tCOMPLETED")
	for _, t := range tasks {
		status, completed := "open", "-"
		if t.Completed() {
			status, completed = "done", t.CompletedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, cleanName(t.Name), status, t.CreatedAt.Format(time.RFC3339), completed)
	}
	return w.Flush()
}

// cleanName replaces control characters so a name cannot break the columns.
func cleanName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, name)
}
