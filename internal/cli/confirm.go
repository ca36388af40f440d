package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/geolocation"
	"github.com/chamada-app/chamadactl/internal/identity"
	"github.com/chamada-app/chamadactl/internal/localstate"
	"github.com/chamada-app/chamadactl/internal/service"
)

func (a *App) confirmCommand() *cobra.Command {
	var (
		nome    string
		history bool
	)

	cmd := &cobra.Command{
		Use:   "confirm [chamadaID]",
		Short: "Confirm presence in a chamada",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if history {
				return a.printConfirmations()
			}

			chamadaID := ""
			if len(args) > 0 {
				chamadaID = args[0]
			}

			return a.runConfirm(cmd.Context(), chamadaID, nome)
		},
	}

	cmd.Flags().StringVar(&nome, "nome", "", "attendee name")
	cmd.Flags().BoolVar(&history, "history", false, "show confirmations made from this device")

	return cmd
}

func (a *App) printConfirmations() error {
	records, err := a.store.Confirmations()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(a.out, "no confirmations recorded on this device")
		return nil
	}

	for _, rec := range records {
		nome := rec.ChamadaNome
		if nome == "" {
			nome = rec.ChamadaID
		}
		fmt.Fprintf(a.out, "%s  %s  as %q\n", formatTime(rec.ConfirmedAt), nome, rec.Nome)
	}

	return nil
}

// runConfirm drives the staged confirmation flow on a terminal: the flow
// pushes state snapshots through a channel and this loop renders each
// stage, collecting input where a stage needs it.
func (a *App) runConfirm(ctx context.Context, chamadaID, nome string) error {
	if a.conf.Location == nil {
		return errors.New(`missing "location" section in config`)
	}
	if a.conf.Identity == nil {
		return errors.New(`missing "identity" section in config`)
	}
	if a.conf.IPLookup == nil {
		return errors.New(`missing "ip_lookup" section in config`)
	}

	loc := a.conf.Location
	var provider geolocation.Provider
	switch loc.Provider {
	case "exec":
		provider = &geolocation.ExecProvider{Command: loc.LocatorCommand}
	case "static":
		provider = &geolocation.StaticProvider{Coordinates: domain.Coordinates{
			Latitude:  loc.StaticLatitude,
			Longitude: loc.StaticLongitude,
		}}
	case "none":
		provider = nil
	default:
		return fmt.Errorf("unknown location provider %q", loc.Provider)
	}

	var strategy identity.Strategy
	switch a.conf.Identity.Strategy {
	case "generated":
		strategy = identity.NewGeneratedStrategy(a.store, localstate.KeyDeviceUUID)
	case "fingerprint":
		if a.conf.Fingerprint == nil {
			return errors.New(`missing "fingerprint" section in config`)
		}
		fp := a.conf.Fingerprint
		strategy = identity.NewFingerprintStrategy(fp.URL, fp.APIKey, fp.Timeout)
	default:
		return fmt.Errorf("unknown identity strategy %q", a.conf.Identity.Strategy)
	}

	updates := make(chan service.Snapshot, 16)

	var flow *service.ConfirmationFlow
	adapter := geolocation.NewAdapter(provider, loc.Timeout, loc.FallbackTimeout, func(snap geolocation.Snapshot) {
		flow.OnLocation(snap)
	})
	flow = service.NewConfirmationFlow(service.FlowConfig{
		Location:  adapter,
		Chamadas:  a.chamadas,
		Presences: a.presenceRepo,
		Identity:  strategy,
		IPLookup:  identity.NewIPLookup(a.conf.IPLookup.URL, a.conf.IPLookup.Timeout),
		Store:     a.store,
		OnChange: func(snap service.Snapshot) {
			select {
			case updates <- snap:
			default:
			}
		},
	})
	defer flow.Close()

	if chamadaID == "" {
		chamadaID = a.prompt("Id da Chamada: ")
	}

	flow.Start(ctx, chamadaID)

	rendered := map[service.State]bool{}
	for {
		var snap service.Snapshot
		select {
		case snap = <-updates:
		case <-ctx.Done():
			return ctx.Err()
		}

		switch snap.State {
		case service.StateInitializing, service.StateAwaitingLocationFix, service.StateSubmitting:
			// Transient stages; nothing to collect.

		case service.StateAwaitingFirstPermission:
			if rendered[snap.State] {
				continue
			}
			rendered[snap.State] = true

			fmt.Fprintln(a.out, "Oi! Precisamos da sua localização.")
			fmt.Fprintln(a.out, "É muito importante que você permita a coleta da sua localização.")
			a.prompt("Pressione Enter para permitir a coleta... ")
			flow.AcknowledgeFirstVisit()

		case service.StateLocationUnavailable:
			fmt.Fprintln(a.out, "Localização não ativa.")
			if snap.Message != "" {
				fmt.Fprintln(a.out, snap.Message)
			}
			fmt.Fprintln(a.out, "Verifique a permissão de localização e o GPS do dispositivo.")
			if !a.promptRetry() {
				return errors.New("confirmation aborted")
			}
			flow.RetryLocation()

		case service.StateFormReady:
			// Drop snapshots superseded while input was being collected.
			if flow.Snapshot().State != service.StateFormReady {
				continue
			}
			if err := a.fillAndSubmit(ctx, flow, snap, &nome); err != nil {
				return err
			}

		case service.StateConfirmed:
			fmt.Fprintln(a.out, "Você confirmou sua presença com sucesso.")
			fmt.Fprintln(a.out, "Você não poderá confirmar presença para outras pessoas.")

			return nil
		}
	}
}

// fillAndSubmit collects the form once, then submits. Every failed
// attempt, precondition and server alike, stops at a prompt: re-submitting
// is always an explicit user action, never something the render loop does
// on its own.
func (a *App) fillAndSubmit(ctx context.Context, flow *service.ConfirmationFlow, snap service.Snapshot, nome *string) error {
	if snap.Chamada != nil && snap.Chamada.Nome != "" {
		fmt.Fprintf(a.out, "Chamada: %s\n", snap.Chamada.Nome)
	}

	if *nome == "" {
		*nome = a.prompt("Seu nome: ")
	}
	flow.SetNome(*nome)

	if snap.Chamada != nil {
		for _, input := range snap.Chamada.CustomInputs {
			value := a.promptCustomInput(input)
			flow.SetCustomValue(input.ID, value)
		}
	}

	for {
		err := flow.Submit(ctx)
		if err == nil {
			return nil
		}

		current := flow.Snapshot()
		if current.Message != "" {
			fmt.Fprintf(a.out, "Erro ao confirmar presença: %s\n", current.Message)
		}

		if !a.promptRetry() {
			return errors.New("confirmation aborted")
		}
	}
}

// promptRetry asks whether to try again. Closed stdin aborts instead of
// reading as an endless stream of retries.
func (a *App) promptRetry() bool {
	fmt.Fprint(a.out, "Tentar novamente? [Enter/q] ")
	line, err := a.in.ReadString('\n')
	if err != nil {
		fmt.Fprintln(a.out)
		return false
	}

	return strings.TrimSpace(line) != "q"
}

// promptCustomInput renders one custom input. Dropdowns accept an option
// number; an empty answer leaves the input unanswered.
func (a *App) promptCustomInput(input domain.CustomInput) string {
	label := input.Label
	if input.Placeholder != "" {
		label += " (" + input.Placeholder + ")"
	}

	if input.Kind == domain.KindText {
		return a.prompt(label + ": ")
	}

	for i, option := range input.Options {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, option)
	}
	answer := a.prompt(label + " [número ou vazio]: ")
	if answer == "" {
		return ""
	}

	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > len(input.Options) {
		fmt.Fprintln(a.out, "opção inválida, deixando em branco")
		return ""
	}

	return input.Options[idx-1]
}
