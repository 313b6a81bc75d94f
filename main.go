package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/myproject/ha-weather-agent/agent"
	"github.com/myproject/ha-weather-agent/homeassistant"
	"github.com/myproject/ha-weather-agent/weather"
)

func main() {
	agentCfg, err := agent.LoadConfig(".")
	if err != nil {
		log.Fatalf("load agent config: %v", err)
	}
	if agentCfg.APIKey == "" {
		log.Fatal("missing API key; set AGENT_API_KEY or agent.yaml")
	}
	if agentCfg.Model == "" {
		agentCfg.Model = "gpt-4o-mini"
	}

	weatherCfg, err := weather.LoadConfig(".")
	if err != nil {
		log.Fatalf("load weather config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	hub, err := homeassistant.NewClient(weatherCfg.URL, weatherCfg.APIToken,
		homeassistant.WithLogger(logger))
	if err != nil {
		log.Fatalf("create hub client: %v", err)
	}

	svc, err := weather.NewService(hub, *weatherCfg, weather.WithLogger(logger))
	if err != nil {
		log.Fatalf("create weather service: %v", err)
	}

	chatAgent := agent.New(agentCfg.APIKey, agentCfg.BaseURL, agentCfg.Model, agentCfg.AllowTools)
	chatAgent.Temperature = agentCfg.Temperature
	chatAgent.MaxRounds = agentCfg.MaxRounds
	chatAgent.SetSystemPrompt(agentCfg.SystemPrompt)
	for _, tool := range weather.AllTools(svc) {
		chatAgent.RegisterTool(tool)
	}

	fmt.Println("Home weather assistant. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}
		reply, err := chatAgent.Invoke(context.Background(), text)
		if err != nil {
			log.Printf("agent error: %v", err)
			continue
		}
		fmt.Printf("Agent> %s\n", reply)
		chatAgent.AddMemory(reply)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("input error: %v", err)
	}
}
