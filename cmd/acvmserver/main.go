package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/leopardracer/noir/acvm"
	"github.com/leopardracer/noir/blackboxstd"
	"github.com/leopardracer/noir/witnessio"
)

// main initializes and starts the partial witness generator HTTP server.
// The server exposes a single solve endpoint with configurable timeouts
// and CORS settings.
func main() {
	fiberConfig := fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  10 * time.Minute,
		BodyLimit:    256 * 1024 * 1024, // 256MB limit for the program+witness payload
		Prefork:      false,
		ServerHeader: "ACVM-Server",
		AppName:      "Partial Witness Generator Server",
	}

	app := fiber.New(fiberConfig)

	corsConfig := cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Content-Length, Authorization, Cookie",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH",
		MaxAge:       12 * 3600,
	}
	app.Use(cors.New(corsConfig))

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/ping", ping)
	v1.Post("/solve", solve)

	log.Fatal(app.Listen(":3000"))
}

func ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// solve handles POST requests carrying a witnessio.ProgramFile JSON body,
// drives it to completion against a fresh ACVM instance, and returns the
// solved witness map or a formatted failure.
func solve(c *fiber.Ctx) error {
	opcodes, witness, err := witnessio.ParseProgram(c.Body())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"status": "failed",
			"error":  err.Error(),
		})
	}

	vm := acvm.NewACVM(opcodes, witness, blackboxstd.NewBackend(), nil, nil, acvm.Config{})

	status := vm.Solve()
	switch status.Kind {
	case acvm.StatusSolved:
		raw := vm.WitnessMap().Raw()
		out := make(map[string]string, len(raw))
		for id, v := range raw {
			out[fmt.Sprint(uint32(id))] = v.String()
		}
		return c.JSON(fiber.Map{
			"status":  "solved",
			"witness": out,
		})
	case acvm.StatusFailure:
		return c.Status(422).JSON(fiber.Map{
			"status": "failed",
			"error":  status.Err.Error(),
		})
	default:
		return c.Status(422).JSON(fiber.Map{
			"status": "failed",
			"error":  "program suspended on a Call or BrilligCall foreign call; this endpoint only solves self-contained programs",
		})
	}
}
