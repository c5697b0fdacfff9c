package viz

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/matsen/researchgraph/internal/graph"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout    string  // "preset", "force", or "circle"
	MinWeight float64 // initial edge weight threshold
	Title     string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "preset",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"preset", "force", "circle"}

// GenerateHTML generates a self-contained HTML file for the graph preview.
func GenerateHTML(p *graph.Payload, opts HTMLOptions) (string, error) {
	if p == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	if opts.MinWeight < 0 || opts.MinWeight > 1 {
		return "", fmt.Errorf("invalid min weight %v: must be within [0, 1]", opts.MinWeight)
	}

	graphJSON, err := ToCytoscapeJSON(p)
	if err != nil {
		return "", err
	}

	title := opts.Title
	if title == "" {
		title = "Citation Graph"
		if seed := p.Seed(); seed != nil {
			title = seed.Data.Label
		}
	}

	data := templateData{
		Title:     title,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		MinWeight: opts.MinWeight,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "preset", "force", "circle":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be preset, force, or circle", layout)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
	MinWeight float64
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "concentric"
	case "force":
		return "cose"
	default:
		return "preset"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f5f5f5;
    }
    #cy {
      width: 100%;
      height: 100vh;
      background: white;
    }
    #controls {
      position: absolute;
      top: 12px;
      left: 12px;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      font-size: 13px;
      z-index: 1000;
    }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 360px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .type {
      font-size: 10px;
      text-transform: uppercase;
      color: #888;
      margin-bottom: 4px;
    }
    #tooltip .label {
      font-weight: bold;
      margin-bottom: 4px;
    }
    #tooltip .detail {
      color: #555;
      margin: 2px 0;
    }
    #tooltip .summary {
      font-style: italic;
      color: #666;
      margin-top: 4px;
    }
  </style>
</head>
<body>
  <div id="controls">
    <label>Min weight <input id="threshold" type="range" min="0" max="1" step="0.05" value="{{.MinWeight}}"></label>
    <span id="threshold-value"></span>
  </div>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': '#4A90D9',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '10px',
              'text-valign': 'bottom',
              'text-margin-y': '5px',
              'text-max-width': '120px',
              'text-wrap': 'ellipsis',
              'width': 'mapData(citationCount, 0, 500, 20, 50)',
              'height': 'mapData(citationCount, 0, 500, 20, 50)'
            }
          },
          {
            selector: 'node[?isSeed]',
            style: {
              'background-color': '#E8923A',
              'shape': 'diamond',
              'font-weight': 'bold',
              'width': '50px',
              'height': '50px'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '#95A5A6',
              'curve-style': 'bezier',
              'width': 'mapData(weight, 0, 1, 1, 6)',
              'opacity': 'mapData(weight, 0, 1, 0.4, 1)'
            }
          },
          {
            selector: 'edge[type="citation"]',
            style: {
              'line-color': '#337AB7'
            }
          },
          {
            selector: 'edge[type="coupling"]',
            style: {
              'line-color': '#9B59B6',
              'line-style': 'dashed'
            }
          },
          {
            selector: 'edge[?directed]',
            style: {
              'target-arrow-shape': 'triangle',
              'target-arrow-color': '#95A5A6'
            }
          },
          {
            selector: '.hidden',
            style: {
              'display': 'none'
            }
          },
          {
            selector: 'node.highlighted',
            style: {
              'border-width': 3,
              'border-color': '#ff6b6b'
            }
          },
          {
            selector: 'node.dimmed',
            style: {
              'opacity': 0.3
            }
          },
          {
            selector: 'edge.dimmed',
            style: {
              'opacity': 0.2
            }
          }
        ],
        layout: {
          name: layout,
          animate: false,
          fit: true,
          concentric: function(node) { return node.data('isSeed') ? 2 : 1; },
          nodeRepulsion: 8000,
          idealEdgeLength: 100,
          edgeElasticity: 100
        }
      });

      const threshold = document.getElementById('threshold');
      const thresholdValue = document.getElementById('threshold-value');

      function applyThreshold() {
        const min = parseFloat(threshold.value);
        thresholdValue.textContent = min.toFixed(2);
        cy.edges().forEach(function(edge) {
          edge.toggleClass('hidden', parseFloat(edge.data('label')) < min);
        });
      }
      threshold.addEventListener('input', applyThreshold);
      applyThreshold();

      const tooltip = document.getElementById('tooltip');

      function showTooltip(evt, content) {
        tooltip.innerHTML = content;
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 15) + 'px';
      }

      function hideTooltip() {
        tooltip.style.display = 'none';
      }

      function getNodeTooltip(node) {
        const data = node.data();
        let html = '<div class="type">' + (data.isSeed ? 'seed' : 'paper') + '</div>';
        html += '<div class="label">' + escapeHtml(data.label) + '</div>';
        if (data.year) html += '<div class="detail">Year: ' + data.year + '</div>';
        html += '<div class="detail">Citations: ' + data.citationCount + '</div>';
        if (data.abstract) html += '<div class="summary">' + escapeHtml(data.abstract.slice(0, 400)) + '</div>';
        return html;
      }

      function getEdgeTooltip(edge) {
        const data = edge.data();
        let html = '<div class="type">' + data.type + '</div>';
        html += '<div class="label">' + escapeHtml(data.source) + ' → ' + escapeHtml(data.target) + '</div>';
        html += '<div class="detail">Weight: ' + data.label + '</div>';
        return html;
      }

      function escapeHtml(str) {
        if (!str) return '';
        return str.replace(/&/g, '&amp;')
                  .replace(/</g, '&lt;')
                  .replace(/>/g, '&gt;')
                  .replace(/"/g, '&quot;');
      }

      cy.on('mouseover', 'node', function(evt) {
        showTooltip(evt, getNodeTooltip(evt.target));
      });

      cy.on('mouseout', 'node', function() {
        hideTooltip();
      });

      cy.on('mouseover', 'edge', function(evt) {
        showTooltip(evt, getEdgeTooltip(evt.target));
      });

      cy.on('mouseout', 'edge', function() {
        hideTooltip();
      });

      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        cy.elements().removeClass('highlighted dimmed');
        const neighborhood = node.neighborhood().add(node);
        neighborhood.addClass('highlighted');
        cy.elements().not(neighborhood).addClass('dimmed');
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('highlighted dimmed');
        }
      });
    })();
  </script>
</body>
</html>`
