package commands

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

var botStartTime = time.Now()

// handleStats shows host and Go runtime statistics.
func handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return err
	}

	fields := make([]*discordgo.MessageEmbedField, 0, 6)

	if hostInfo, err := host.Info(); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Host",
			Value: fmt.Sprintf("%s (%s)\nup %s", hostInfo.Hostname, hostInfo.Platform,
				(time.Duration(hostInfo.Uptime) * time.Second).Round(time.Minute)),
			Inline: true,
		})
	}

	if cpuPercent, err := cpu.Percent(time.Second, false); err == nil && len(cpuPercent) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "CPU",
			Value:  fmt.Sprintf("%.1f%% of %d threads", cpuPercent[0], runtime.NumCPU()),
			Inline: true,
		})
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Memory",
			Value:  fmt.Sprintf("%.1f%% of %d MiB", vm.UsedPercent, vm.Total/1024/1024),
			Inline: true,
		})
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	fields = append(fields,
		&discordgo.MessageEmbedField{
			Name:   "Go runtime",
			Value:  fmt.Sprintf("%s, %d goroutines, %d MiB alloc", runtime.Version(), runtime.NumGoroutine(), ms.Alloc/1024/1024),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Bot",
			Value:  fmt.Sprintf("up %s, %d guilds", time.Since(botStartTime).Round(time.Second), len(s.State.Guilds)),
			Inline: true,
		},
	)

	embed := &discordgo.MessageEmbed{
		Title:     "📊 Statistics",
		Color:     0x00AAFF,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}
