package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	"github.com/markeluno8-dev/AuthentiEats/api"
	"github.com/markeluno8-dev/AuthentiEats/api/clients"
	"github.com/markeluno8-dev/AuthentiEats/cmd/flags"
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

var idFlag = &cli.Uint64Flag{
	Name:     "id",
	Required: true,
	Usage:    "product id",
}

func main() {
	app := &cli.App{
		Name:  "registry-client",
		Usage: "Command-line client for the product registry API",
		Flags: []cli.Flag{
			flags.ServerAddrFlag,
			flags.CallerFlag,
			flags.PrivateKeyFlag,
		},
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "register a new product",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "batch-id", Required: true},
					&cli.StringFlag{Name: "origin", Required: true},
					&cli.IntFlag{Name: "quality", Required: true},
					&cli.StringSliceFlag{Name: "cert", Usage: "certification label, repeatable"},
				},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					id, err := c.Register(
						cCtx.String("batch-id"),
						cCtx.String("origin"),
						cCtx.Int("quality"),
						cCtx.StringSlice("cert"))
					if err != nil {
						return err
					}
					return printJSON(map[string]interfaces.ProductID{"id": id})
				},
			},
			{
				Name:  "update",
				Usage: "apply a partial update to a product",
				Flags: []cli.Flag{
					idFlag,
					&cli.StringFlag{Name: "batch-id"},
					&cli.StringFlag{Name: "origin"},
					&cli.IntFlag{Name: "quality"},
					&cli.StringSliceFlag{Name: "cert", Usage: "replacement certification set, repeatable"},
				},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					var req api.UpdateRequest
					if cCtx.IsSet("batch-id") {
						v := cCtx.String("batch-id")
						req.BatchID = &v
					}
					if cCtx.IsSet("origin") {
						v := cCtx.String("origin")
						req.Origin = &v
					}
					if cCtx.IsSet("quality") {
						v := cCtx.Int("quality")
						req.Quality = &v
					}
					if cCtx.IsSet("cert") {
						v := cCtx.StringSlice("cert")
						req.Certifications = &v
					}
					return c.Update(interfaces.ProductID(cCtx.Uint64(idFlag.Name)), req)
				},
			},
			{
				Name:  "transfer-owner",
				Usage: "reassign a product to a new owner",
				Flags: []cli.Flag{
					idFlag,
					&cli.StringFlag{Name: "new-owner", Required: true},
				},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					newOwner, err := interfaces.NewIdentityFromHex(cCtx.String("new-owner"))
					if err != nil {
						return err
					}
					return c.TransferOwnership(interfaces.ProductID(cCtx.Uint64(idFlag.Name)), newOwner)
				},
			},
			{
				Name:  "get",
				Usage: "fetch a product record",
				Flags: []cli.Flag{idFlag},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					product, err := c.Product(interfaces.ProductID(cCtx.Uint64(idFlag.Name)))
					if err != nil {
						return err
					}
					return printJSON(product)
				},
			},
			{
				Name:  "owner",
				Usage: "fetch the current owner of a product",
				Flags: []cli.Flag{idFlag},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					owner, err := c.ProductOwner(interfaces.ProductID(cCtx.Uint64(idFlag.Name)))
					if err != nil {
						return err
					}
					return printJSON(map[string]string{"owner": owner.String()})
				},
			},
			{
				Name:  "history",
				Usage: "fetch a product's audit trail",
				Flags: []cli.Flag{idFlag},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					entries, err := c.UpdateHistory(interfaces.ProductID(cCtx.Uint64(idFlag.Name)))
					if err != nil {
						return err
					}
					return printJSON(entries)
				},
			},
			{
				Name:  "status",
				Usage: "fetch the registry's admin, pause state and next id",
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					status, err := c.Status()
					if err != nil {
						return err
					}
					return printJSON(status)
				},
			},
			{
				Name:      "is-registrar",
				Usage:     "check whether an identity has registration rights",
				ArgsUsage: "<address>",
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					id, err := interfaces.NewIdentityFromHex(cCtx.Args().First())
					if err != nil {
						return err
					}
					registrar, err := c.IsRegistrar(id)
					if err != nil {
						return err
					}
					return printJSON(map[string]bool{"registrar": registrar})
				},
			},
			{
				Name:  "admin",
				Usage: "administrative operations",
				Subcommands: []*cli.Command{
					{
						Name:      "transfer",
						Usage:     "hand the admin role to another identity",
						ArgsUsage: "<new-admin>",
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							newAdmin, err := interfaces.NewIdentityFromHex(cCtx.Args().First())
							if err != nil {
								return err
							}
							return c.TransferAdmin(newAdmin)
						},
					},
					{
						Name:  "pause",
						Usage: "pause all mutating registry operations",
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							return c.SetPaused(true)
						},
					},
					{
						Name:  "unpause",
						Usage: "resume mutating registry operations",
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							return c.SetPaused(false)
						},
					},
					{
						Name:      "add-registrar",
						Usage:     "grant registration rights to an identity",
						ArgsUsage: "<address>",
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							registrar, err := interfaces.NewIdentityFromHex(cCtx.Args().First())
							if err != nil {
								return err
							}
							return c.AddRegistrar(registrar)
						},
					},
					{
						Name:      "remove-registrar",
						Usage:     "revoke registration rights from an identity",
						ArgsUsage: "<address>",
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							registrar, err := interfaces.NewIdentityFromHex(cCtx.Args().First())
							if err != nil {
								return err
							}
							return c.RemoveRegistrar(registrar)
						},
					},
					{
						Name:  "snapshot",
						Usage: "ask the server to persist a snapshot",
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							resp, err := c.Snapshot()
							if err != nil {
								return err
							}
							return printJSON(resp)
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newClient builds the HTTP client from the global flags. With --private-key
// the caller identity is derived from the key and requests are signed; with
// --caller alone the identity is sent unsigned.
func newClient(cCtx *cli.Context) (*clients.RegistryClient, error) {
	c := &clients.RegistryClient{
		ServerAddr: cCtx.String(flags.ServerAddrFlag.Name),
	}

	if keyHex := cCtx.String(flags.PrivateKeyFlag.Name); keyHex != "" {
		key, err := crypto.HexToECDSA(keyHex)
		if err != nil {
			return nil, fmt.Errorf("could not parse private key: %w", err)
		}
		c.PrivateKey = key
		c.Caller = interfaces.Identity(crypto.PubkeyToAddress(key.PublicKey))
		return c, nil
	}

	if callerHex := cCtx.String(flags.CallerFlag.Name); callerHex != "" {
		caller, err := interfaces.NewIdentityFromHex(callerHex)
		if err != nil {
			return nil, fmt.Errorf("could not parse caller identity: %w", err)
		}
		c.Caller = caller
	}
	return c, nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
