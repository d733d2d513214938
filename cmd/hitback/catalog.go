package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/config"
	"github.com/hazadus/hitback-cards/internal/metadata"
)

// createCatalogCommand создает группу команд catalog
func (app *Application) createCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the local track catalog",
	}
	cmd.AddCommand(app.createCatalogImportCommand())
	return cmd
}

// createCatalogImportCommand создает команду catalog import
func (app *Application) createCatalogImportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Build a catalog from mp3 files in a directory",
		Long:  `Read tags of every mp3 file in a directory and print the catalog as YAML, or write it to a file with -o.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir, err := config.ExpandHome(args[0])
			if err != nil {
				return err
			}
			return app.importCatalog(dir, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the catalog to a file")

	return cmd
}

func (app *Application) importCatalog(dir, output string) error {
	tracks, err := metadata.NewExtractor().ScanDir(dir)
	if err != nil {
		return err
	}
	app.Logger.Infof("найдено mp3 файлов: %d в %s", len(tracks), dir)

	if output == "" {
		data, err := catalog.Marshal(tracks)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	if err := catalog.WriteFile(output, tracks); err != nil {
		return err
	}
	fmt.Printf("✅ Каталог из %d треков сохранен в %s\n", len(tracks), output)
	fmt.Println("💡 Укажите его в catalog_file, чтобы использовать как резервный")
	return nil
}
