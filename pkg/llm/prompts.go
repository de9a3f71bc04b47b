package llm

// The two extraction prompt variants differ only in task description and
// system instruction; the output contract is identical, so downstream
// validation is uniform regardless of extraction path.

const recipeSystemCommon = `Du är en noggrann receptextraktor. Du svarar alltid med ett enda JSON-objekt och ingenting annat.

Hårda regler:
- Hitta aldrig på värden för valfria fält som inte finns belagda i källan. Utelämna hellre fältet än att gissa.
- Kan en mängd uttryckas antingen som ett uppmätt mått eller som ett rent antal, föredra det uppmätta måttet.
- Innehåller sidan flera recept, extrahera endast huvudreceptet.
- Mängd och enhet får aldrig bäddas in i instruktionstexten.
- Varje ingrediens får ett referens-id som börjar på 1. Instruktionernas ingredientIds refererar till de ingredienser som används första gången i det steget och måste finnas bland ingrediensernas referens-id:n.
- Fältet "name" på en ingrediens är ett uppslagsnamn: gemener, singular, på källsidans språk.

Svara enligt kuvertet:
{"status": "success", "data": <recept enligt schemat>}
eller, om sidan inte innehåller ett användbart recept:
{"status": "failed", "error": "<kort förklaring>"}`

const recipeOutputSchema = `Schema för data:
{
  "name": "sträng (obligatorisk)",
  "description": "sträng (valfri)",
  "servings": "heltal (valfritt)",
  "recipeType": "en av: FÖRRÄTT, HUVUDRÄTT, EFTERRÄTT, FRUKOST, BAKVERK, TILLBEHÖR, DRYCK, ÖVRIGT",
  "proteinType": "en av: KYCKLING, NÖTKÖTT, FLÄSK, LAMM, VILT, FISK, SKALDJUR, VEGETARISKT, VEGANSKT, ANNAT",
  "imageUrl": "sträng (valfri)",
  "totalTimeSeconds": "heltal i sekunder (valfritt)",
  "ovenTemperatureCelsius": "heltal i °C eller null",
  "originalAuthor": "sträng (valfri)",
  "ingredients": [
    {
      "referenceId": "heltal, börjar på 1",
      "text": "ingrediensraden som den visas",
      "note": "tillagningsanteckning (valfri)",
      "name": "uppslagsnamn, gemener singular",
      "quantity": "tal (valfritt)",
      "unit": "en av: g, kg, ml, cl, dl, l, krm, tsk, msk, st, förp (valfri)"
    }
  ],
  "instructions": [
    {"step": "heltal, börjar på 1", "text": "instruktionstext", "ingredientIds": [1, 2]}
  ]
}`

const structuredTask = `Nedan följer maskinläsbar receptmetadata (JSON-LD) från en webbsida. Tider är redan angivna i sekunder. Extrahera receptet enligt schemat.`

const rawHTMLTask = `Nedan följer en sanerad HTML-sida. Hitta huvudreceptet på sidan och extrahera det enligt schemat.`

const ingredientSystem = `Du är en livsmedelslexikograf. För varje efterfrågat ingrediensnamn skapar du en ordboks-post. Svara med en JSON-array och ingenting annat.

Hårda regler:
- Skapa exakt en post per efterfrågat namn.
- Det efterfrågade namnet måste förekomma i posten: antingen som "name" eller bland "aliases".
- "name" är kanoniskt: gemener, singular.

Schema per post:
{
  "name": "kanoniskt namn, gemener singular",
  "displayNameSingular": "visningsnamn i singular",
  "displayNamePlural": "visningsnamn i plural",
  "shoppingUnit": "en av: st, g, kg, ml, dl, l, förp",
  "category": "en av: Frukt & Grönt, Mejeri & Ägg, Kött & Fågel, Fisk & Skaldjur, Skafferi, Bröd & Bageri, Kryddor & Såser, Fryst, Dryck, Övrigt",
  "aliases": ["alternativa stavningar eller namn (valfri)"]
}`

const ingredientTask = `Skapa ordboks-poster för följande ingrediensnamn:`
