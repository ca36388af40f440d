package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chamada-app/chamadactl/internal/cli/request"
	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/service"
)

func (a *App) chamadaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chamada",
		Short: "Manage roll-call sessions",
	}

	cmd.AddCommand(
		a.chamadaListCommand(),
		a.chamadaShowCommand(),
		a.chamadaCreateCommand(),
		a.chamadaUpdateCommand(),
		a.chamadaToggleCommand(),
		a.chamadaLinkCommand(),
		a.chamadaInputCommand(),
	)

	return cmd
}

func (a *App) chamadaListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all chamadas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			chamadas, err := a.chamadas.List(cmd.Context(), session.Token)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOME\tINICIO\tFIM\tATIVA")
			for _, c := range chamadas {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
					c.ID, c.Nome, formatTime(c.DataInicio), formatTime(c.DataFim), c.Ativa)
			}

			return w.Flush()
		},
	}
}

func (a *App) chamadaShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one chamada with its custom inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chamada, err := a.chamadas.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, service.ErrChamadaNotFound) {
					return fmt.Errorf("chamada %q not found", args[0])
				}

				return err
			}

			a.printChamada(chamada)

			return nil
		},
	}
}

func (a *App) chamadaCreateCommand() *cobra.Command {
	var lat, long float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a chamada anchored at a location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			req := request.CreateChamadaRequest{Latitude: lat, Longitude: long}
			if err = req.Validate(); err != nil {
				return err
			}

			chamada, err := a.chamadas.Create(cmd.Context(), session.Token, domain.Coordinates{
				Latitude:  req.Latitude,
				Longitude: req.Longitude,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "created chamada %s\n", chamada.ID)
			fmt.Fprintf(a.out, "share link: %s\n", a.chamadas.ShareLink(chamada.ID))

			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "target latitude")
	cmd.Flags().Float64Var(&long, "long", 0, "target longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("long")

	return cmd
}

func (a *App) chamadaUpdateCommand() *cobra.Command {
	var (
		nome      string
		lat, long float64
		tolerance int
		inicio    string
		fim       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a chamada's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			chamada, err := a.chamadas.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("nome") {
				chamada.Nome = nome
			}
			if cmd.Flags().Changed("lat") {
				chamada.Latitude = lat
			}
			if cmd.Flags().Changed("long") {
				chamada.Longitude = long
			}
			if cmd.Flags().Changed("tolerance") {
				chamada.ToleranceMeters = tolerance
			}
			if cmd.Flags().Changed("inicio") {
				chamada.DataInicio, err = time.Parse(time.RFC3339, inicio)
				if err != nil {
					return fmt.Errorf("invalid --inicio: %w", err)
				}
			}
			if cmd.Flags().Changed("fim") {
				chamada.DataFim, err = time.Parse(time.RFC3339, fim)
				if err != nil {
					return fmt.Errorf("invalid --fim: %w", err)
				}
			}

			req := request.UpdateChamadaRequest{
				Nome:            chamada.Nome,
				Latitude:        chamada.Latitude,
				Longitude:       chamada.Longitude,
				ToleranceMeters: chamada.ToleranceMeters,
			}
			if err = req.Validate(); err != nil {
				return err
			}

			updated, err := a.chamadas.Update(cmd.Context(), session.Token, chamada)
			if err != nil {
				return err
			}

			a.printChamada(updated)

			return nil
		},
	}

	cmd.Flags().StringVar(&nome, "nome", "", "display name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "target latitude")
	cmd.Flags().Float64Var(&long, "long", 0, "target longitude")
	cmd.Flags().IntVar(&tolerance, "tolerance", 0, "tolerance radius in meters")
	cmd.Flags().StringVar(&inicio, "inicio", "", "start time (RFC 3339)")
	cmd.Flags().StringVar(&fim, "fim", "", "end time (RFC 3339)")

	return cmd
}

func (a *App) chamadaToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a chamada's active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			chamada, err := a.chamadas.ToggleAtiva(cmd.Context(), session.Token, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "chamada %s ativa=%v\n", chamada.ID, chamada.Ativa)

			return nil
		},
	}
}

func (a *App) chamadaLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <id>",
		Short: "Print the attendee share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, a.chamadas.ShareLink(args[0]))

			return nil
		},
	}
}

func (a *App) chamadaInputCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "input",
		Short: "Manage a chamada's custom inputs",
	}

	add := &cobra.Command{
		Use:   "add <chamadaID>",
		Short: "Append a new custom input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			input, err := a.chamadas.AddInput(cmd.Context(), session.Token, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "added input %s (%s)\n", input.ID, input.Kind)

			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <chamadaID> <inputID>",
		Short: "Remove a custom input",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			inputs, err := a.chamadas.RemoveInput(cmd.Context(), session.Token, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%d input(s) remaining\n", len(inputs))

			return nil
		},
	}

	cmd.AddCommand(add, remove)

	return cmd
}

func (a *App) presenceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presence",
		Short: "Inspect recorded presences",
	}

	list := &cobra.Command{
		Use:   "list <chamadaID>",
		Short: "List presences recorded for a chamada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			report, err := a.presences.Report(cmd.Context(), session.Token, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			header := "NOME\tENVIO\tIP\tLAT\tLONG"
			for _, input := range report.CustomInputs {
				header += "\t" + input.Label
			}
			fmt.Fprintln(w, header)

			for _, p := range report.Presences {
				row := fmt.Sprintf("%s\t%s\t%s\t%.5f\t%.5f",
					p.Nome, formatTime(p.Envio), p.IP, p.Latitude, p.Longitude)
				for _, input := range report.CustomInputs {
					row += "\t" + p.CustomValues[input.ID]
				}
				fmt.Fprintln(w, row)
			}

			return w.Flush()
		},
	}

	cmd.AddCommand(list)

	return cmd
}

func (a *App) printChamada(c domain.Chamada) {
	fmt.Fprintf(a.out, "id:         %s\n", c.ID)
	fmt.Fprintf(a.out, "nome:       %s\n", c.Nome)
	fmt.Fprintf(a.out, "inicio:     %s\n", formatTime(c.DataInicio))
	fmt.Fprintf(a.out, "fim:        %s\n", formatTime(c.DataFim))
	fmt.Fprintf(a.out, "local:      %.5f, %.5f (±%dm)\n", c.Latitude, c.Longitude, c.ToleranceMeters)
	fmt.Fprintf(a.out, "ativa:      %v\n", c.Ativa)
	for _, input := range c.CustomInputs {
		fmt.Fprintf(a.out, "input:      %s [%s] %q\n", input.ID, input.Kind, input.Label)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
