package registry_test

import (
	"context"
	"log/slog"

	"github.com/mcp-scout/mcp-scout/internal/registry"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/pkg/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Context7Adapter", func() {
	It("should yield nothing when no API key is configured", func() {
		adapter := registry.NewContext7Adapter(config.Context7Config{}, slog.Default())
		resources, err := adapter.Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(resources).To(BeEmpty())
	})

	It("should yield exactly one documentation resource when configured", func() {
		adapter := registry.NewContext7Adapter(config.Context7Config{APIKey: "key"}, slog.Default())
		resources, err := adapter.Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(resources).To(HaveLen(1))

		r := resources[0]
		Expect(r.QualifiedName).To(Equal(registry.Context7QualifiedName))
		Expect(r.SourceRegistry).To(Equal(resource.RegistryContext7))
		Expect(r.TrustScore).To(BeNumerically("~", 0.9, 0.001))
		Expect(r.HasCategory(resource.CategoryDocumentation)).To(BeTrue())

		var toolNames []string
		for _, t := range r.Tools {
			toolNames = append(toolNames, t.Name)
		}
		Expect(toolNames).To(ContainElements("resolve-library-id", "get-library-docs"))
	})

	It("should keep the resource id stable across fetches", func() {
		adapter := registry.NewContext7Adapter(config.Context7Config{APIKey: "key"}, slog.Default())
		first, err := adapter.Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		second, err := adapter.Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(first[0].ID).To(Equal(second[0].ID))
	})
})
