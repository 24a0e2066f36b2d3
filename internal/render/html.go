// Package render turns an organized slip into a static, self-contained
// HTML pull sheet: color sections in WUBRG order, rarity subsections,
// per-item pull checkboxes persisted in localStorage, and a card image
// hover preview.
package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/codyseavey/pullsheet/internal/models"
)

type cardView struct {
	models.LineItem
	Index int
}

type rarityView struct {
	Code     models.Rarity
	Name     string
	Quantity int
	Cards    []cardView
}

type colorView struct {
	Color    models.Color
	Quantity int
	Rarities []rarityView
}

type pageView struct {
	OrderNumber string
	Summary     models.RunSummary
	Colors      []colorView
	TotalItems  int
}

// WriteHTML renders the pull sheet for a slip to w.
func WriteHTML(w io.Writer, slip *models.OrganizedSlip) error {
	view := pageView{
		OrderNumber: slip.OrderNumber,
		Summary:     slip.Summary,
		TotalItems:  slip.Summary.TotalLineItems,
	}

	index := 0
	for _, group := range slip.Groups {
		cv := colorView{Color: group.Color, Quantity: group.Quantity}
		for _, rg := range group.Rarities {
			rv := rarityView{
				Code:     rg.Rarity,
				Name:     rg.Rarity.DisplayName(),
				Quantity: rg.Quantity,
			}
			for _, item := range rg.Items {
				rv.Cards = append(rv.Cards, cardView{LineItem: item, Index: index})
				index++
			}
			cv.Rarities = append(cv.Rarities, rv)
		}
		view.Colors = append(view.Colors, cv)
	}

	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render pull sheet: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("pullsheet").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>MTG Order - Organized by Color &amp; Rarity</title>
    <style>
        * { box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            margin: 0;
            padding: 20px;
            background: #1a1a2e;
            color: #eee;
        }
        h1 { text-align: center; color: #fff; margin-bottom: 10px; }
        .order-info { text-align: center; color: #aaa; margin-bottom: 20px; }
        .summary {
            display: flex;
            justify-content: center;
            gap: 30px;
            margin-bottom: 30px;
            flex-wrap: wrap;
        }
        .summary-item {
            background: #16213e;
            padding: 15px 25px;
            border-radius: 8px;
            text-align: center;
        }
        .summary-item .number { font-size: 2em; font-weight: bold; color: #e94560; }
        .summary-item .label { color: #aaa; font-size: 0.9em; }
        .color-section {
            margin-bottom: 30px;
            background: #16213e;
            border-radius: 12px;
            overflow: hidden;
        }
        .color-header {
            padding: 15px 20px;
            font-size: 1.4em;
            font-weight: bold;
            display: flex;
            align-items: center;
            gap: 10px;
        }
        .color-pip {
            width: 24px;
            height: 24px;
            border-radius: 50%;
            border: 2px solid rgba(255,255,255,0.3);
        }
        .color-White { background: linear-gradient(135deg, #f8f6d8, #e8e4c9); }
        .color-Blue { background: linear-gradient(135deg, #0e68ab, #1a9bc7); }
        .color-Black { background: linear-gradient(135deg, #393939, #1a1a1a); }
        .color-Red { background: linear-gradient(135deg, #d32029, #f44336); }
        .color-Green { background: linear-gradient(135deg, #00733e, #2e7d32); }
        .color-Multicolor { background: linear-gradient(135deg, #c9a227, #ffd700); }
        .color-Colorless { background: linear-gradient(135deg, #9e9e9e, #bdbdbd); }
        .color-Land { background: linear-gradient(135deg, #795548, #a1887f); }
        .color-Unknown { background: linear-gradient(135deg, #555, #777); }
        .rarity-section { padding: 10px 20px; }
        .rarity-header {
            font-size: 1.1em;
            font-weight: 600;
            padding: 8px 0;
            border-bottom: 1px solid rgba(255,255,255,0.1);
            margin-bottom: 10px;
        }
        .rarity-M { color: #ff9800; }
        .rarity-R { color: #ffd700; }
        .rarity-U { color: #90caf9; }
        .rarity-C { color: #aaa; }
        .rarity-S { color: #ce93d8; }
        .card-list { display: grid; gap: 8px; }
        .card-item {
            display: grid;
            grid-template-columns: 40px 1fr auto;
            gap: 15px;
            padding: 10px 15px;
            background: rgba(255,255,255,0.05);
            border-radius: 6px;
            align-items: center;
            cursor: pointer;
        }
        .card-item:hover { background: rgba(255,255,255,0.1); }
        .card-qty {
            font-weight: bold;
            font-size: 1.2em;
            color: #e94560;
            text-align: center;
        }
        .card-info { display: flex; flex-direction: column; gap: 2px; }
        .card-name { font-weight: 500; }
        .card-details { font-size: 0.85em; color: #888; }
        .card-foil { color: #ffd700; font-weight: bold; }
        .card-language { color: #ff6b6b; font-weight: bold; font-size: 0.9em; }
        .card-price { text-align: right; color: #4caf50; font-weight: 500; }
        .card-item.checked { opacity: 0.5; }
        .card-item.checked .card-name { text-decoration: line-through; }
        .progress-bar {
            width: 100%;
            height: 8px;
            background: #333;
            border-radius: 4px;
            margin-bottom: 20px;
            overflow: hidden;
        }
        .progress-fill {
            height: 100%;
            background: linear-gradient(90deg, #4caf50, #8bc34a);
            transition: width 0.3s;
            border-radius: 4px;
        }
        .progress-text {
            text-align: center;
            color: #aaa;
            margin-bottom: 10px;
            font-size: 0.9em;
        }
        #card-preview {
            display: none;
            position: fixed;
            z-index: 1000;
            pointer-events: none;
            border-radius: 12px;
            box-shadow: 0 8px 32px rgba(0,0,0,0.5);
            max-width: 250px;
            max-height: 350px;
        }
        #card-preview img {
            display: block;
            width: 100%;
            height: auto;
            border-radius: 12px;
        }
        @media print {
            body { background: #fff; color: #000; }
            .color-section { background: #f5f5f5; break-inside: avoid; }
            .card-item { background: #eee; }
            .progress-bar, .progress-text { display: none; }
        }
    </style>
</head>
<body>
    <div id="card-preview"><img src="" alt="Card Preview"></div>

    <h1>MTG Order - Pull Sheet</h1>
    <div class="order-info">{{if .OrderNumber}}{{.OrderNumber}}{{else}}TCGplayer Order{{end}}</div>

    <div class="progress-text">Progress: <span id="progress-count">0</span> / {{.TotalItems}} items pulled</div>
    <div class="progress-bar">
        <div class="progress-fill" id="progress-fill" style="width: 0%"></div>
    </div>

    <div class="summary">
        <div class="summary-item">
            <div class="number">{{.Summary.TotalCards}}</div>
            <div class="label">Total Cards</div>
        </div>
        <div class="summary-item">
            <div class="number">${{printf "%.2f" .Summary.TotalValue}}</div>
            <div class="label">Total Value</div>
        </div>
        <div class="summary-item">
            <div class="number">{{.Summary.TotalLineItems}}</div>
            <div class="label">Line Items</div>
        </div>
    </div>

{{range .Colors}}    <div class="color-section" id="{{.Color}}">
        <div class="color-header">
            <span class="color-pip color-{{.Color}}"></span>
            {{.Color}} ({{.Quantity}} cards)
        </div>
{{range .Rarities}}        <div class="rarity-section">
            <div class="rarity-header rarity-{{.Code}}">{{.Name}} ({{.Quantity}})</div>
            <div class="card-list">
{{range .Cards}}                <div class="card-item" data-index="{{.Index}}"{{if .ImageURL}} data-image="{{.ImageURL}}"{{end}} onclick="toggleCard(this)">
                    <div class="card-qty">{{.Quantity}}x</div>
                    <div class="card-info">
                        <div class="card-name">{{.CardName}}{{if .Variant}} ({{.Variant}}){{end}}{{if .Foil}}<span class="card-foil"> &#9733; FOIL</span>{{end}}{{if .Language}}<span class="card-language"> [{{.Language}}]</span>{{end}}</div>
                        <div class="card-details">{{.SetName}} #{{.CollectorNumber}} - {{.Condition}}</div>
                    </div>
                    <div class="card-price">${{printf "%.2f" .ExtendedPrice}}</div>
                </div>
{{end}}            </div>
        </div>
{{end}}    </div>
{{end}}
    <script>
        const totalItems = {{.TotalItems}};

        function updateProgress() {
            const checked = document.querySelectorAll('.card-item.checked').length;
            document.getElementById('progress-count').textContent = checked;
            document.getElementById('progress-fill').style.width = (checked / totalItems * 100) + '%';
        }

        function toggleCard(element) {
            element.classList.toggle('checked');
            const index = element.dataset.index;
            if (element.classList.contains('checked')) {
                localStorage.setItem('card-' + index, 'checked');
            } else {
                localStorage.removeItem('card-' + index);
            }
            updateProgress();
        }

        document.querySelectorAll('.card-item').forEach((item) => {
            const index = item.dataset.index;
            if (localStorage.getItem('card-' + index) === 'checked') {
                item.classList.add('checked');
            }
        });
        updateProgress();

        const preview = document.getElementById('card-preview');
        const previewImg = preview.querySelector('img');

        document.querySelectorAll('.card-item[data-image]').forEach((item) => {
            item.addEventListener('mouseenter', () => {
                const imageUrl = item.dataset.image;
                if (imageUrl) {
                    previewImg.src = imageUrl;
                    preview.style.display = 'block';
                }
            });

            item.addEventListener('mousemove', (e) => {
                const padding = 20;
                let x = e.clientX + padding;
                let y = e.clientY - 100;
                if (x + 260 > window.innerWidth) {
                    x = e.clientX - 260 - padding;
                }
                if (y < 10) {
                    y = 10;
                }
                if (y + 360 > window.innerHeight) {
                    y = window.innerHeight - 360;
                }
                preview.style.left = x + 'px';
                preview.style.top = y + 'px';
            });

            item.addEventListener('mouseleave', () => {
                preview.style.display = 'none';
            });
        });
    </script>
</body>
</html>
`))
